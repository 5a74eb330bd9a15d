package station

import (
	"context"
	"time"

	"github.com/greenshed/plantnode/internal/hardware"
	"github.com/greenshed/plantnode/internal/logging"
	"github.com/greenshed/plantnode/internal/netconfig"
	"go.uber.org/zap"
)

// State is the connection supervisor's current position in its lifecycle.
type State int

const (
	// Disconnected means no station link is established.
	Disconnected State = iota
	// ConfigPortal means the node is hosting the configuration access
	// point, waiting for a user to submit new credentials.
	ConfigPortal
	// Connected means the station link is up and services are running.
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case ConfigPortal:
		return "config-portal"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// NetworkManager abstracts the WiFi station link.
type NetworkManager interface {
	// Join attempts to associate with the given network. It returns once
	// the link is established or the attempt has failed.
	Join(ctx context.Context, creds netconfig.Credentials) error
	// LinkUp reports the live link status.
	LinkUp() bool
}

// Portal is the captive configuration portal. Run brings up the
// configuration access point and blocks until a user submits credentials
// or the context is cancelled.
type Portal interface {
	Run(ctx context.Context) (netconfig.Credentials, error)
}

// Service is one network service whose lifecycle the supervisor owns.
// Update must be non-blocking aside from short accept deadlines.
type Service interface {
	Start() error
	Update() error
	Stop()
}

// LinkSink receives state transitions for out-of-band observers.
type LinkSink interface {
	PublishLink(from, to string)
}

// Supervisor owns the station lifecycle: it establishes the WiFi
// connection, falls back to the configuration portal when no network can
// be joined, and starts, ticks and stops the node's services. No other
// component may start or stop them.
type Supervisor struct {
	network  NetworkManager
	portal   Portal
	store    *netconfig.Store
	services []Service
	status   hardware.StatusLED
	links    LinkSink

	state   State
	ledOn   bool
	running bool
}

// New creates a supervisor in the Disconnected state. status and links are
// optional.
func New(network NetworkManager, portal Portal, store *netconfig.Store, status hardware.StatusLED, links LinkSink, services ...Service) *Supervisor {
	return &Supervisor{
		network:  network,
		portal:   portal,
		store:    store,
		status:   status,
		links:    links,
		services: services,
		state:    Disconnected,
	}
}

// AddService appends a service to the supervised set. Must be called
// before Init.
func (s *Supervisor) AddService(svc Service) {
	s.services = append(s.services, svc)
}

// State returns the current connection state.
func (s *Supervisor) State() State {
	return s.state
}

// Init connects to the last configured network and starts all services.
// Blocking: if no network is known or joinable it moves through the
// configuration portal and does not return until a connection exists or
// ctx is cancelled.
func (s *Supervisor) Init(ctx context.Context) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	s.startServices()
	return nil
}

// Connect attempts to join the last-known network, falling back to the
// configuration portal on failure and retrying with whatever credentials
// the portal produces.
//
// The call blocks until a connection is established, however long that
// takes: inability to connect degrades to an indefinitely blocking portal
// rather than failing closed, so a recovery path is always reachable.
// The only non-success exit is context cancellation.
func (s *Supervisor) Connect(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		creds, err := s.store.Load()
		if err != nil {
			logging.Warn("failed to load stored network", zap.Error(err))
		}

		if !creds.Empty() {
			if err := s.network.Join(ctx, creds); err == nil {
				s.setState(Connected, "join succeeded")
				return nil
			} else {
				logging.Warn("join failed",
					zap.String("ssid", creds.SSID),
					zap.Error(err),
				)
			}
		}

		// No joinable network: host the configuration portal and wait
		// for the user to supply one.
		s.setState(ConfigPortal, "no joinable network")
		newCreds, err := s.portal.Run(ctx)
		if err != nil {
			return err
		}
		if err := s.store.Save(newCreds); err != nil {
			logging.Error("failed to persist credentials", zap.Error(err))
		}
		s.setState(Disconnected, "portal credentials received")
	}
}

// Poll advances the supervisor by one scheduler tick. While the link is
// intact it delegates one update tick to each service; on link loss it
// stops the services, re-runs the blocking connect procedure and restarts
// them before any further request is serviced.
func (s *Supervisor) Poll(ctx context.Context) error {
	if s.state != Connected {
		return nil
	}

	if !s.network.LinkUp() {
		s.setState(Disconnected, "link lost")
		s.stopServices()
		if err := s.Connect(ctx); err != nil {
			return err
		}
		s.startServices()
		return nil
	}

	s.blink()
	s.updateServices()
	return nil
}

// Run drives the supervisor as the node's main control loop: one blocking
// Init, then Poll once per tick until ctx is cancelled. The loop is
// single-threaded by design; Connect blocking the whole process during
// recovery is the accepted availability trade-off.
func (s *Supervisor) Run(ctx context.Context, tick time.Duration) error {
	if err := s.Init(ctx); err != nil {
		return err
	}
	defer s.stopServices()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Poll(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *Supervisor) setState(next State, reason string) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	logging.LogLinkEvent(prev.String(), next.String(), reason)
	if s.links != nil {
		s.links.PublishLink(prev.String(), next.String())
	}
}

func (s *Supervisor) startServices() {
	if s.running {
		return
	}
	for _, svc := range s.services {
		if err := svc.Start(); err != nil {
			// Availability first: a service that fails to start is
			// logged and skipped, the node keeps running.
			logging.Error("service start failed", zap.Error(err))
		}
	}
	s.running = true
}

func (s *Supervisor) updateServices() {
	for _, svc := range s.services {
		if err := svc.Update(); err != nil {
			logging.Warn("service update failed", zap.Error(err))
		}
	}
}

func (s *Supervisor) stopServices() {
	if !s.running {
		return
	}
	for _, svc := range s.services {
		svc.Stop()
	}
	s.running = false
}

// blink toggles the status LED each connected tick as an alive indicator.
// Deliberately absent during Connect: the LED freezing is the visible sign
// the node is in recovery.
func (s *Supervisor) blink() {
	if s.status == nil {
		return
	}
	s.ledOn = !s.ledOn
	if err := s.status.Set(s.ledOn); err != nil {
		logging.Debug("status LED write failed", zap.Error(err))
	}
}
