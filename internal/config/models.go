package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for plant nodes and application preferences.
type Registry struct {
	Version     int              `yaml:"version"`
	Nodes       map[string]*Node `yaml:"nodes,omitempty"` // Keyed by node serial number
	Preferences *Preferences     `yaml:"preferences,omitempty"`
}

// Node represents user-defined metadata for a single plant node.
// This is keyed by the node's serial number in the Registry.
type Node struct {
	Nickname      string             `yaml:"nickname,omitempty"`       // User-friendly name
	LastIP        string             `yaml:"last_ip,omitempty"`        // Last known IP address
	LastSeen      time.Time          `yaml:"last_seen,omitempty"`      // Last discovery/connection time
	Plant         string             `yaml:"plant,omitempty"`          // What is growing under this node
	MoistureAlert int                `yaml:"moisture_alert,omitempty"` // Raise attention below this reading (0 disables)
	Presets       map[string]*Preset `yaml:"presets,omitempty"`        // Named lighting presets
}

// Preset represents a user-defined lighting preset for a node.
// This is purely client-side information, the node itself only keeps its
// current cached state.
type Preset struct {
	Color      string `yaml:"color,omitempty"`      // Color token (e.g. "blue", "orange_yellow")
	Brightness string `yaml:"brightness,omitempty"` // "up" or "down" nudge applied after the color
	Function   string `yaml:"function,omitempty"`   // Special function token (e.g. "smooth")
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool   `yaml:"auto_discover"`          // Enable automatic mDNS discovery on startup
	DiscoverTimeout int    `yaml:"discover_timeout"`       // mDNS discovery timeout in seconds
	DefaultNode     string `yaml:"default_node,omitempty"` // Serial used when no --node flag is given
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Nodes:   make(map[string]*Node),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
		},
	}
}

// GetNode retrieves node metadata by serial number.
// Returns nil if the node doesn't exist in the registry.
func (r *Registry) GetNode(serial string) *Node {
	return r.Nodes[serial]
}

// EnsureNode ensures a node entry exists in the registry.
// If the node doesn't exist, creates a new entry with default values.
// Returns the node entry (existing or newly created).
func (r *Registry) EnsureNode(serial string) *Node {
	if r.Nodes == nil {
		r.Nodes = make(map[string]*Node)
	}

	if node, exists := r.Nodes[serial]; exists {
		return node
	}

	node := &Node{
		Presets: make(map[string]*Preset),
	}
	r.Nodes[serial] = node
	return node
}

// UpdateNodeLastSeen updates the last seen timestamp and IP for a node.
func (r *Registry) UpdateNodeLastSeen(serial, ip string) {
	node := r.EnsureNode(serial)
	node.LastSeen = time.Now()
	node.LastIP = ip
}

// SetNodeNickname sets a user-friendly nickname for a node.
func (r *Registry) SetNodeNickname(serial, nickname string) {
	node := r.EnsureNode(serial)
	node.Nickname = nickname
}

// SetNodePlant records what is growing under a node.
func (r *Registry) SetNodePlant(serial, plant string) {
	node := r.EnsureNode(serial)
	node.Plant = plant
}

// SetPreset sets or updates a named lighting preset for a node.
func (r *Registry) SetPreset(serial, name string, preset *Preset) {
	node := r.EnsureNode(serial)

	if node.Presets == nil {
		node.Presets = make(map[string]*Preset)
	}

	node.Presets[name] = preset
}

// ResolveNode looks a node up by serial or by nickname.
// Serial matches take precedence over nickname matches.
func (r *Registry) ResolveNode(ref string) (string, *Node) {
	if node, exists := r.Nodes[ref]; exists {
		return ref, node
	}
	for serial, node := range r.Nodes {
		if node.Nickname == ref {
			return serial, node
		}
	}
	return "", nil
}
