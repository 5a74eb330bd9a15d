// Package config manages the CLI's persistent node registry.
//
// The registry is a YAML file under the user's config directory, keyed by
// node serial number. It carries nicknames, last known addresses and
// client-side extras like lighting presets. Nothing in it is required for
// the nodes themselves to operate.
package config
