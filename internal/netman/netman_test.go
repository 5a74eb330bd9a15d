package netman

import (
	"context"
	"testing"

	"github.com/greenshed/plantnode/internal/netconfig"
)

func TestSimJoinAcceptAny(t *testing.T) {
	sim := NewSim()

	err := sim.Join(context.Background(), netconfig.Credentials{SSID: "Anything", Passphrase: "x"})
	if err != nil {
		t.Fatalf("Join(): %v", err)
	}
	if !sim.LinkUp() {
		t.Error("LinkUp() = false after successful join")
	}
	if sim.Joined() != "Anything" {
		t.Errorf("Joined() = %q, want Anything", sim.Joined())
	}
}

func TestSimJoinChecksCredentials(t *testing.T) {
	sim := NewSimWithNetworks(map[string]string{"Greenhouse": "secret"})

	tests := []struct {
		name  string
		creds netconfig.Credentials
		ok    bool
	}{
		{"correct", netconfig.Credentials{SSID: "Greenhouse", Passphrase: "secret"}, true},
		{"wrong passphrase", netconfig.Credentials{SSID: "Greenhouse", Passphrase: "nope"}, false},
		{"unknown ssid", netconfig.Credentials{SSID: "Elsewhere", Passphrase: "secret"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sim.Join(context.Background(), tt.creds)
			if (err == nil) != tt.ok {
				t.Errorf("Join(%s) error = %v, want ok=%v", tt.creds.SSID, err, tt.ok)
			}
		})
	}
}

func TestSimDrop(t *testing.T) {
	sim := NewSim()

	if err := sim.Join(context.Background(), netconfig.Credentials{SSID: "Greenhouse"}); err != nil {
		t.Fatalf("Join(): %v", err)
	}

	sim.Drop()
	if sim.LinkUp() {
		t.Error("LinkUp() = true after Drop()")
	}
	if sim.Joined() != "" {
		t.Errorf("Joined() = %q after Drop(), want empty", sim.Joined())
	}
}

func TestSimAccessPointLifecycle(t *testing.T) {
	sim := NewSim()

	if err := sim.StartAccessPoint("Wifi_Plant_Node_AP", "password"); err != nil {
		t.Fatalf("StartAccessPoint(): %v", err)
	}
	if !sim.AccessPointRunning() {
		t.Error("AccessPointRunning() = false after start")
	}

	// Double start is an error
	if err := sim.StartAccessPoint("Another", "pw"); err == nil {
		t.Error("second StartAccessPoint() should fail")
	}

	if err := sim.StopAccessPoint(); err != nil {
		t.Fatalf("StopAccessPoint(): %v", err)
	}
	if sim.AccessPointRunning() {
		t.Error("AccessPointRunning() = true after stop")
	}

	if err := sim.StopAccessPoint(); err == nil {
		t.Error("StopAccessPoint() on stopped AP should fail")
	}
}
