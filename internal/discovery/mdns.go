package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/greenshed/plantnode/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type plant nodes advertise as.
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.").
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for node discovery.
	DefaultScanTimeout = 10 * time.Second

	// instancePrefix prefixes every advertised instance name.
	instancePrefix = "plantnode-"
)

// instancePattern matches plant node instance names (e.g. "plantnode-a1b2c3").
var instancePattern = regexp.MustCompile(`^plantnode-([0-9a-z]+)$`)

// Node is one discovered plant node on the local network.
type Node struct {
	Instance string
	Serial   string
	Hostname string
	IP       string
	Port     int
	Metadata []string
}

// Scanner handles mDNS node discovery.
type Scanner struct {
	// Timeout is the maximum time to wait for node discovery.
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan discovers all plant nodes on the local network.
func (s *Scanner) Scan(ctx context.Context) ([]*Node, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	nodes := make([]*Node, 0)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for entry := range entries {
			if node := parseServiceEntry(entry); node != nil {
				nodes = append(nodes, node)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-collected
	return nodes, nil
}

// parseServiceEntry converts a zeroconf entry to a Node, or nil when the
// entry does not look like a plant node.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Node {
	if entry == nil {
		return nil
	}
	m := instancePattern.FindStringSubmatch(entry.Instance)
	if m == nil {
		return nil
	}

	node := &Node{
		Instance: entry.Instance,
		Serial:   m[1],
		Hostname: strings.TrimSuffix(entry.HostName, "."),
		Port:     entry.Port,
		Metadata: entry.Text,
	}
	if len(entry.AddrIPv4) > 0 {
		node.IP = entry.AddrIPv4[0].String()
	}
	return node
}

// Announcer advertises this node's REST service over mDNS. It implements
// the station service lifecycle so the supervisor withdraws the
// advertisement whenever the link is down.
type Announcer struct {
	Serial string
	Port   int

	server *zeroconf.Server
}

// NewAnnouncer creates an announcer for the node's REST port.
func NewAnnouncer(serial string, port int) *Announcer {
	return &Announcer{Serial: serial, Port: port}
}

// Start registers the mDNS service.
func (a *Announcer) Start() error {
	instance := instancePrefix + a.Serial
	server, err := zeroconf.Register(
		instance,
		ServiceType,
		ServiceDomain,
		a.Port,
		[]string{"service=led-controller", "serial=" + a.Serial},
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	a.server = server
	logging.Info("mDNS announcement started",
		zap.String("instance", instance),
		zap.Int("port", a.Port),
	)
	return nil
}

// Update is a no-op: zeroconf answers queries on its own goroutines.
func (a *Announcer) Update() error { return nil }

// Stop withdraws the advertisement. Idempotent.
func (a *Announcer) Stop() {
	if a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	logging.Info("mDNS announcement stopped")
}
