package netman

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/greenshed/plantnode/internal/logging"
	"github.com/greenshed/plantnode/internal/netconfig"
)

// SimNetwork is an in-memory WiFi radio used when the daemon runs without
// real network control. It implements both the station manager's network
// interface and the portal's access point interface.
type SimNetwork struct {
	mu sync.Mutex

	// Known maps SSIDs to the passphrase a join must present. When empty
	// and AcceptAny is set, any credentials are accepted.
	Known     map[string]string
	AcceptAny bool

	// JoinDelay is how long a join attempt takes. Zero means immediate.
	JoinDelay time.Duration

	linkUp  bool
	joined  string
	apSSID  string
	apStart int
}

// NewSim returns a simulated radio that accepts any credentials.
func NewSim() *SimNetwork {
	return &SimNetwork{AcceptAny: true}
}

// NewSimWithNetworks returns a simulated radio that only accepts joins
// matching one of the given SSID/passphrase pairs.
func NewSimWithNetworks(known map[string]string) *SimNetwork {
	return &SimNetwork{Known: known}
}

// Join attempts to associate with the network named in creds.
func (s *SimNetwork) Join(ctx context.Context, creds netconfig.Credentials) error {
	if s.JoinDelay > 0 {
		select {
		case <-time.After(s.JoinDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.AcceptAny {
		pass, known := s.Known[creds.SSID]
		if !known {
			return fmt.Errorf("no such network: %s", creds.SSID)
		}
		if pass != creds.Passphrase {
			return fmt.Errorf("authentication failed for network %s", creds.SSID)
		}
	}

	s.joined = creds.SSID
	s.linkUp = true
	logging.Debug("sim radio joined network", zap.String("ssid", creds.SSID))
	return nil
}

// LinkUp reports whether the simulated association is still alive.
func (s *SimNetwork) LinkUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linkUp
}

// Joined returns the SSID of the current association, or "" when down.
func (s *SimNetwork) Joined() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.linkUp {
		return ""
	}
	return s.joined
}

// Drop severs the simulated association. The next supervisor poll will
// observe the lost link and begin reconnecting.
func (s *SimNetwork) Drop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkUp = false
}

// StartAccessPoint brings up the simulated configuration AP.
func (s *SimNetwork) StartAccessPoint(ssid, passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.apSSID != "" {
		return fmt.Errorf("access point %s already running", s.apSSID)
	}
	s.apSSID = ssid
	s.apStart++
	logging.Debug("sim access point started", zap.String("ssid", ssid))
	return nil
}

// StopAccessPoint tears the simulated AP down. Stopping an AP that is not
// running is an error, matching how a real radio driver behaves.
func (s *SimNetwork) StopAccessPoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.apSSID == "" {
		return fmt.Errorf("access point not running")
	}
	s.apSSID = ""
	return nil
}

// AccessPointRunning reports whether the simulated AP is up.
func (s *SimNetwork) AccessPointRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apSSID != ""
}
