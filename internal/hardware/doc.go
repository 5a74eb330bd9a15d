// Package hardware defines the node's hardware collaborators and their
// simulated stand-ins.
//
// The REST and station layers only ever see the IRSink, MoistureSensor and
// StatusLED interfaces; which implementation backs them is a deployment
// decision made once at startup. The sim implementations let the full
// daemon run on a development host with no attached hardware.
package hardware
