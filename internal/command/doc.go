// Package command maps human-readable control tokens to the fixed IR codes
// understood by the LED strip controller.
//
// The controller is operated with a 24-key infrared remote; every route on
// the node's REST surface corresponds to one group of remote buttons. This
// package holds the static token tables for those groups (brightness, power,
// function, color) and resolves validated tokens to single-byte codes.
//
// Tables are immutable and built at compile time. Token matching is exact
// and case-sensitive.
package command
