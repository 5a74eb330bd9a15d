// Package rest implements the single-client REST surface that exposes the
// IR LED controller to the network.
//
// # Protocol
//
// All responses are text/plain. Command routes accept GET to read the
// cached value (or static documentation with ?documentation=true) and POST
// to validate and transmit a command:
//
//	GET  : /              : Argument[none]
//	GET  : /routes        : Argument[none]
//	GET  : /cached-state  : Argument[none]
//	GET  : /moisture      : Argument["documentation"=<bool>]
//	GET, POST : /raw        : Argument["raw"=<byte>,"documentation"=<bool>]
//	GET, POST : /brightness : Argument["brightness"=<string>,"documentation"=<bool>]
//	GET, POST : /power      : Argument["power"=<string>,"documentation"=<bool>]
//	GET, POST : /function   : Argument["function"=<string>,"documentation"=<bool>]
//	GET, POST : /color      : Argument["color"=<string>,"documentation"=<bool>]
//
// Validation failures are reported as plain-text "error: ..." bodies with
// HTTP status 200. That is a legacy quirk of the controller's original wire
// protocol, preserved here so existing clients keep working. Unmatched
// routes return a 404 diagnostic echo of the request.
//
// # State cache
//
// The service caches the last accepted value per attribute. Fields start at
// "unknown" after Start and are only overwritten by successfully validated
// commands; the cache says nothing about the physical strip, which the IR
// remote can change behind this service's back.
//
// # Lifecycle
//
// Start, Update and Stop are owned by the station supervisor. Update
// services at most one pending client per call, keeping all cache mutation
// on the supervisor's poll thread.
package rest
