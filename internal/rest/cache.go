package rest

// Unknown is the sentinel value every cache field holds until the first
// successfully validated command overwrites it.
const Unknown = "unknown"

// StateCache stores the last accepted value per controllable attribute.
// The cache makes no guarantee about the actual state of the LED
// controller: IR is one-way and the strip can be changed by the physical
// remote at any time.
type StateCache struct {
	Raw        string // last transmitted IR code, as a decimal string
	Brightness string // "up" | "down"
	Power      string // "on" | "off"
	Function   string // "flash" | "strobe" | "fade" | "smooth"
	Color      string // one of the 16 color tokens
	URI        string // path of the last serviced request, valid or not
}

func newStateCache() StateCache {
	return StateCache{
		Raw:        Unknown,
		Brightness: Unknown,
		Power:      Unknown,
		Function:   Unknown,
		Color:      Unknown,
		URI:        Unknown,
	}
}

// field returns a pointer to the cache field backing a category route.
func (c *StateCache) field(name string) *string {
	switch name {
	case "brightness":
		return &c.Brightness
	case "power":
		return &c.Power
	case "function":
		return &c.Function
	case "color":
		return &c.Color
	}
	return nil
}
