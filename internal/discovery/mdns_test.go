package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name       string
		instance   string
		wantSerial string
		wantNil    bool
	}{
		{"valid serial", "plantnode-a1b2c3", "a1b2c3", false},
		{"numeric serial", "plantnode-42", "42", false},
		{"not a plant node", "SomePrinter", "", true},
		{"wrong prefix", "othergadget-1234", "", true},
		{"missing serial", "plantnode-", "", true},
		{"uppercase serial rejected", "plantnode-ABC", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: tt.instance},
				HostName:      "plantnode.local.",
				Port:          80,
				AddrIPv4:      []net.IP{net.IPv4(192, 168, 4, 16)},
			}
			node := parseServiceEntry(entry)
			if tt.wantNil {
				if node != nil {
					t.Fatalf("parseServiceEntry(%q) = %+v, want nil", tt.instance, node)
				}
				return
			}
			if node == nil {
				t.Fatalf("parseServiceEntry(%q) = nil", tt.instance)
			}
			if node.Serial != tt.wantSerial {
				t.Errorf("Serial = %q, want %q", node.Serial, tt.wantSerial)
			}
			if node.IP != "192.168.4.16" {
				t.Errorf("IP = %q, want 192.168.4.16", node.IP)
			}
			if node.Hostname != "plantnode.local" {
				t.Errorf("Hostname = %q, want plantnode.local", node.Hostname)
			}
		})
	}
}

func TestParseServiceEntryNil(t *testing.T) {
	if node := parseServiceEntry(nil); node != nil {
		t.Errorf("parseServiceEntry(nil) = %+v, want nil", node)
	}
}
