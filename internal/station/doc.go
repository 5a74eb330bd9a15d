// Package station supervises the node's WiFi connection and the network
// services layered on top of it.
//
// The supervisor is a three-state machine (disconnected, config-portal,
// connected) driven by polled link checks rather than callbacks. Connect
// is deliberately blocking: when no network can be joined the node hosts a
// captive configuration access point and waits, indefinitely if necessary,
// for a user to supply credentials. There is no fatal error path; every
// connectivity failure degrades to that recovery portal.
//
// The supervisor exclusively owns the start/stop lifecycle of the REST
// service, the mDNS announcer and the telemetry hub. While connected it
// delegates one non-blocking update tick per poll to each service.
package station
