// Package telemetry streams node events (accepted commands, moisture
// samples, link transitions) to websocket subscribers.
//
// The hub lives on its own port, off to the side of the single-client REST
// surface, and is started and stopped by the station supervisor together
// with the other network services. Subscribers that stop reading are
// dropped; the node never blocks on telemetry.
package telemetry
