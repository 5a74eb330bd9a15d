// Package discovery advertises plant nodes over mDNS and finds them from
// the CLI.
//
// Nodes register as "_http._tcp" services with an instance name of
// "plantnode-<serial>", so a scan can tell plant nodes apart from every
// other web thing answering multicast DNS on the subnet. The announcer is
// supervised by the station: it is withdrawn whenever the link drops and
// re-registered after recovery.
package discovery
