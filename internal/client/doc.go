// Package client is the Go client for a plant node's REST surface and
// telemetry stream.
//
// The node reports validation failures as "error: ..." bodies with HTTP
// status 200; this package translates those into *CommandError values so
// callers get real Go errors. Transport failures are retried with
// exponential backoff, validation rejections never are.
package client
