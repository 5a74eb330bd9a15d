// Plantnode-server is the daemon for a WiFi plant monitoring node.
//
// It supervises the node's WiFi association (falling back to a captive
// configuration portal when no credentials work), serves the single-client
// REST API that drives the IR controlled LED strip, announces the node over
// mDNS and streams command and sensor telemetry to WebSocket subscribers.
//
// Usage:
//
//	plantnode-server run [flags]
//
// See 'plantnode-server run --help' for available options.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenshed/plantnode/internal/discovery"
	"github.com/greenshed/plantnode/internal/hardware"
	"github.com/greenshed/plantnode/internal/logging"
	"github.com/greenshed/plantnode/internal/netconfig"
	"github.com/greenshed/plantnode/internal/netman"
	"github.com/greenshed/plantnode/internal/portal"
	"github.com/greenshed/plantnode/internal/rest"
	"github.com/greenshed/plantnode/internal/station"
	"github.com/greenshed/plantnode/internal/telemetry"
	"github.com/greenshed/plantnode/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "plantnode-server",
	Short: "Plant Node Daemon",
	Long: `The daemon for a WiFi plant monitoring node.

Supervises the WiFi association, serves the LED strip REST API, announces
the node over mDNS and streams telemetry to WebSocket subscribers.

Note: for talking to running nodes, use the separate 'plantnode-ctl' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run command and flags
var (
	restAddr      string
	telemetryAddr string
	hardwareMode  string
	fifoPath      string
	networkMode   string
	wifiInterface string
	credsPath     string
	apSSID        string
	apPassphrase  string
	portalAddr    string
	mdnsEnabled   bool
	serial        string
	logLevel      string
	tick          time.Duration
	moistureEvery time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the plant node daemon",
	Long: `Start the plant node daemon.

The daemon first joins the WiFi network stored in its credentials file. When
no credentials are stored, or none of them work, it brings up an open access
point with a captive web form and waits for new credentials to be submitted.

Once associated, it starts the REST API, the mDNS announcer and the telemetry
hub, and keeps polling the link. A lost association stops all services and
re-enters the connect cycle.`,
	Example: `  # Run with simulated hardware and radio (development)
  plantnode-server run --hardware sim --network sim --rest-addr :8080

  # Run on a Raspberry Pi with NetworkManager and an IR transmitter FIFO
  plantnode-server run --hardware fifo --fifo /run/plantnode/ir --network nmcli --interface wlan0

  # Run without mDNS announcements or telemetry
  plantnode-server run --mdns=false --telemetry-addr ""`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().StringVar(&restAddr, "rest-addr", fmt.Sprintf(":%d", rest.DefaultPort), "REST API listen address")
	runCmd.Flags().StringVar(&telemetryAddr, "telemetry-addr", ":8090", "Telemetry WebSocket listen address (empty = disabled)")
	runCmd.Flags().StringVar(&hardwareMode, "hardware", "sim", "Hardware backend (sim, fifo)")
	runCmd.Flags().StringVar(&fifoPath, "fifo", "/run/plantnode/ir", "IR transmitter FIFO path (fifo hardware only)")
	runCmd.Flags().StringVar(&networkMode, "network", "nmcli", "Radio backend (nmcli, sim)")
	runCmd.Flags().StringVar(&wifiInterface, "interface", "wlan0", "Wireless interface (nmcli radio only)")
	runCmd.Flags().StringVar(&credsPath, "credentials", "", "WiFi credentials file (default: user config dir)")
	runCmd.Flags().StringVar(&apSSID, "ap-ssid", portal.DefaultSSID, "Configuration access point SSID")
	runCmd.Flags().StringVar(&apPassphrase, "ap-passphrase", portal.DefaultPassphrase, "Configuration access point passphrase")
	runCmd.Flags().StringVar(&portalAddr, "portal-addr", ":80", "Configuration portal listen address")
	runCmd.Flags().BoolVar(&mdnsEnabled, "mdns", true, "Announce the node over mDNS")
	runCmd.Flags().StringVar(&serial, "serial", "", "Node serial number for mDNS announcements (default: hostname)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().DurationVar(&tick, "tick", 20*time.Millisecond, "Supervisor poll interval")
	runCmd.Flags().DurationVar(&moistureEvery, "moisture-interval", time.Minute, "Moisture telemetry sample interval")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	bench, err := buildBench()
	if err != nil {
		return err
	}

	radio, err := buildRadio()
	if err != nil {
		return err
	}

	if credsPath == "" {
		credsPath, err = netconfig.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to determine credentials path: %w", err)
		}
	}
	store := netconfig.NewStore(credsPath)

	captive := portal.New(radio, apSSID, apPassphrase, portalAddr)

	var hub *telemetry.Hub
	var events rest.EventSink
	var links station.LinkSink
	if telemetryAddr != "" {
		hub = telemetry.NewHub(telemetryAddr)
		events = hub
		links = hub
	}

	restService := rest.NewService(restAddr, bench.IR, bench.Moisture, events)

	supervisor := station.New(radio, captive, store, bench.Status, links, restService)
	if hub != nil {
		supervisor.AddService(hub)
	}
	if mdnsEnabled {
		if serial == "" {
			serial, err = os.Hostname()
			if err != nil {
				return fmt.Errorf("failed to determine serial: %w", err)
			}
		}
		supervisor.AddService(discovery.NewAnnouncer(serial, restPort()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if hub != nil {
		go sampleMoisture(ctx, bench.Moisture, hub)
	}

	if err := supervisor.Init(ctx); err != nil {
		return fmt.Errorf("failed to bring the node up: %w", err)
	}

	return supervisor.Run(ctx, tick)
}

// restPort extracts the announced port from the REST listen address.
func restPort() int {
	_, portStr, err := net.SplitHostPort(restAddr)
	if err != nil {
		return rest.DefaultPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return rest.DefaultPort
	}
	return port
}

// buildBench selects the hardware backend from flags.
func buildBench() (*hardware.Bench, error) {
	switch hardwareMode {
	case "sim":
		return hardware.NewSimBench(), nil
	case "fifo":
		return hardware.NewFIFOBench(fifoPath), nil
	default:
		return nil, fmt.Errorf("unknown hardware backend: %s (expected sim or fifo)", hardwareMode)
	}
}

// buildRadio selects the WiFi radio backend from flags. Both backends
// also serve as the portal's access point.
func buildRadio() (interface {
	station.NetworkManager
	portal.AccessPoint
}, error) {
	switch networkMode {
	case "sim":
		return netman.NewSim(), nil
	case "nmcli":
		return netman.NewNMCli(wifiInterface), nil
	default:
		return nil, fmt.Errorf("unknown radio backend: %s (expected nmcli or sim)", networkMode)
	}
}

// sampleMoisture periodically reads the soil sensor and publishes the
// reading to telemetry subscribers.
func sampleMoisture(ctx context.Context, sensor hardware.MoistureSensor, hub *telemetry.Hub) {
	ticker := time.NewTicker(moistureEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			value, err := sensor.Read()
			if err != nil {
				logging.Warn("moisture read failed")
				continue
			}
			hub.PublishMoisture(value)
		}
	}
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plantnode-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
