// Package netman provides the WiFi radio backends for the station
// supervisor: a NetworkManager (nmcli) implementation for real hosts and
// an in-memory simulation for development and tests. Both satisfy the
// station manager's network interface and the portal's access point
// interface.
package netman
