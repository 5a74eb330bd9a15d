package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/greenshed/plantnode/internal/client"
	"github.com/greenshed/plantnode/internal/command"
	"github.com/greenshed/plantnode/internal/config"
	"github.com/greenshed/plantnode/internal/discovery"
	"github.com/greenshed/plantnode/internal/telemetry"
	"github.com/greenshed/plantnode/internal/tui"
)

// Common command flags
var (
	nodeRef       string
	nodePort      int
	telemetryPort int
	scanTimeout   int
)

func init() {
	// Common flags for node commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&nodeRef, "node", "", "Node IP address, serial or nickname (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&nodePort, "port", 80, "Node HTTP port")

	// Add subcommands directly to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(rawCmd)
	rootCmd.AddCommand(moistureCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(nodesCmd)
}

// scanCmd discovers nodes on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for plant nodes on the network",
	Long: `Scan for plant nodes using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts from plant nodes and displays all
discovered nodes with their IP addresses, serial numbers and metadata.
Discovered nodes are remembered in the local registry, so later commands can
refer to them by serial or nickname.`,
	Example: `  # Scan for 10 seconds (default)
  plantnode-ctl scan

  # Quick 3-second scan
  plantnode-ctl scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for plant nodes (timeout: %ds)...\n\n", scanTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(scanTimeout)*time.Second)
	defer cancel()

	nodes, err := discovery.NewScanner().Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(nodes) == 0 {
		fmt.Println("No nodes found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the node is powered on and connected to your WiFi")
		fmt.Println("  - A node with a flashing LED is still connecting or in portal mode")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --node flag to specify the IP manually if discovery fails")
		return nil
	}

	registry, regErr := config.LoadRegistry()

	fmt.Printf("Found %d node(s):\n\n", len(nodes))

	for i, node := range nodes {
		name := node.Serial
		if regErr == nil {
			if known := registry.GetNode(node.Serial); known != nil && known.Nickname != "" {
				name = fmt.Sprintf("%s (%s)", known.Nickname, node.Serial)
			}
		}

		fmt.Printf("%d. %s\n", i+1, name)
		fmt.Printf("   Serial:  %s\n", node.Serial)
		fmt.Printf("   IP:      %s:%d\n", node.IP, node.Port)
		if len(node.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", node.Metadata)
		}
		fmt.Println()

		if regErr == nil {
			registry.UpdateNodeLastSeen(node.Serial, node.IP)
		}
	}

	if regErr == nil {
		if err := registry.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to update node registry: %v\n", err)
		}
	}

	fmt.Println("Use 'plantnode-ctl state --node <ip>' to view a node's cached state")
	fmt.Println("Use 'plantnode-ctl panel' for the interactive control panel")

	return nil
}

// stateCmd displays a node's cached state
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show a node's cached LED state",
	Long: `Display the cached LED strip state of a plant node.

The node cannot read back from the IR controlled strip, so this is the
node's record of the last accepted command per category. Categories the
node has not commanded since boot read "unknown".`,
	Example: `  # Show state with auto-discovery
  plantnode-ctl state

  # Show state for a specific node
  plantnode-ctl state --node 192.168.4.16
  plantnode-ctl state --node "Kitchen Basil"`,
	RunE: runState,
}

func runState(cmd *cobra.Command, args []string) error {
	c, err := nodeClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	state, err := c.CachedState(ctx)
	if err != nil {
		return fmt.Errorf("failed to get cached state: %w", err)
	}

	fmt.Printf("Power:      %s\n", state.Power)
	fmt.Printf("Color:      %s\n", state.Color)
	fmt.Printf("Brightness: %s\n", state.Brightness)
	fmt.Printf("Function:   %s\n", state.Function)
	fmt.Printf("Raw:        %s\n", state.Raw)
	fmt.Printf("Last URI:   %s\n", state.URI)

	return nil
}

// setCmd sends a single category command
var setCmd = &cobra.Command{
	Use:   "set <category> <token>",
	Short: "Send an LED strip command",
	Long: `Send a single LED strip command to a plant node.

Categories and their tokens:
  brightness  up, down
  power       on, off
  function    flash, strobe, fade, smooth
  color       white, red, green, blue and the 12 blended shades`,
	Example: `  # Turn the strip on and make it blue
  plantnode-ctl set power on --node 192.168.4.16
  plantnode-ctl set color blue --node 192.168.4.16

  # Nudge brightness up
  plantnode-ctl set brightness up --node 192.168.4.16`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	cat := command.Category(args[0])
	token := args[1]

	if !command.Valid(cat) {
		return fmt.Errorf("unknown category %q (expected one of: %v)", args[0], command.Categories())
	}
	if _, ok := command.Lookup(cat, token); !ok {
		return fmt.Errorf("unknown %s token %q (expected one of: %v)", cat, token, command.Tokens(cat))
	}

	c, err := nodeClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := c.Set(ctx, cat, token); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	fmt.Printf("✓ sent %s %s\n", cat, token)
	return nil
}

// rawCmd transmits an arbitrary IR code
var rawCmd = &cobra.Command{
	Use:   "raw <code>",
	Short: "Transmit a raw IR code",
	Long: `Transmit an arbitrary single-byte IR code to the LED strip.

This bypasses the category tables entirely. See the node's /raw route
documentation for the code table.`,
	Example: `  # Code 10 is the blue color command
  plantnode-ctl raw 10 --node 192.168.4.16`,
	Args: cobra.ExactArgs(1),
	RunE: runRaw,
}

func runRaw(cmd *cobra.Command, args []string) error {
	code, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid code value: %w", err)
	}
	if code < 0 || code > 255 {
		return fmt.Errorf("code %d out of range (0-255)", code)
	}

	c, err := nodeClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	if err := c.Raw(ctx, code); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	fmt.Printf("✓ transmitted code %d\n", code)
	return nil
}

// moistureCmd reads the soil moisture sensor
var moistureCmd = &cobra.Command{
	Use:   "moisture",
	Short: "Read the soil moisture sensor",
	Long: `Read the node's soil moisture sensor.

Readings are raw ADC counts in the 0-1023 range. Dry soil reads low. If the
node has a moisture alert threshold configured in the local registry, a
warning is printed when the reading falls below it.`,
	Example: `  plantnode-ctl moisture --node 192.168.4.16`,
	RunE: runMoisture,
}

func runMoisture(cmd *cobra.Command, args []string) error {
	c, err := nodeClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	value, err := c.Moisture(ctx)
	if err != nil {
		return fmt.Errorf("failed to read moisture: %w", err)
	}
	if value < 0 {
		fmt.Println("Moisture: unknown (sensor not readable)")
		return nil
	}

	fmt.Printf("Moisture: %d\n", value)

	if registry, err := config.LoadRegistry(); err == nil {
		if serial, node := registry.ResolveNode(nodeRef); node != nil && node.MoistureAlert > 0 && value < node.MoistureAlert {
			fmt.Printf("⚠ reading below alert threshold %d for node %s, time to water\n", node.MoistureAlert, serial)
		}
	}

	return nil
}

// presetCmd applies a stored lighting preset
var presetCmd = &cobra.Command{
	Use:   "preset <name>",
	Short: "Apply a stored lighting preset",
	Long: `Apply a lighting preset stored in the local registry.

A preset is a color, an optional brightness nudge and an optional special
function, applied in that order. Presets are stored per node, so --node
must resolve to a registered serial or nickname.`,
	Example: `  plantnode-ctl preset evening --node "Kitchen Basil"`,
	Args: cobra.ExactArgs(1),
	RunE: runPreset,
}

func runPreset(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load node registry: %w", err)
	}

	_, node := registry.ResolveNode(nodeRef)
	if node == nil {
		return fmt.Errorf("node %q not found in registry (run 'plantnode-ctl scan' first)", nodeRef)
	}

	preset := node.Presets[args[0]]
	if preset == nil {
		return fmt.Errorf("node has no preset named %q", args[0])
	}

	c, err := nodeClient()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	steps := []struct {
		cat   command.Category
		token string
	}{
		{command.CategoryColor, preset.Color},
		{command.CategoryBrightness, preset.Brightness},
		{command.CategoryFunction, preset.Function},
	}

	for _, step := range steps {
		if step.token == "" {
			continue
		}
		if err := c.Set(ctx, step.cat, step.token); err != nil {
			return fmt.Errorf("preset step %s %s failed: %w", step.cat, step.token, err)
		}
		fmt.Printf("✓ sent %s %s\n", step.cat, step.token)
	}

	return nil
}

// watchCmd streams live telemetry events
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live telemetry from a node",
	Long: `Subscribe to a node's telemetry WebSocket and print events as they
arrive: accepted commands, moisture samples and link state changes.

Press Ctrl+C to stop watching.`,
	Example: `  plantnode-ctl watch --node 192.168.4.16

  # Telemetry on a non-default port
  plantnode-ctl watch --node 192.168.4.16 --telemetry-port 9090`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&telemetryPort, "telemetry-port", 8090, "Node telemetry WebSocket port")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ip, err := resolveNodeIP()
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(ip, strconv.Itoa(telemetryPort))
	fmt.Printf("Watching telemetry from %s (Ctrl+C to stop)...\n\n", addr)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return client.Watch(ctx, addr, func(ev telemetry.Event) {
		stamp := ev.Time.Format("15:04:05")
		switch ev.Type {
		case telemetry.EventCommand:
			fmt.Printf("%s  command   %s %s (code %d)\n", stamp, ev.Category, ev.Token, ev.Code)
		case telemetry.EventMoisture:
			fmt.Printf("%s  moisture  %d\n", stamp, ev.Value)
		case telemetry.EventLink:
			fmt.Printf("%s  link      %s → %s\n", stamp, ev.From, ev.To)
		default:
			fmt.Printf("%s  %s\n", stamp, ev.Type)
		}
	})
}

// panelCmd launches the interactive TUI control panel
var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Launch the interactive control panel",
	Long: `Launch an interactive TUI control panel for a plant node.

The panel shows the node's cached LED state and moisture reading, refreshing
on a short timer, with a picker for sending commands by category and token.

This is the recommended way to drive a node for most users.`,
	Example: `  # Launch panel with auto-discovery
  plantnode-ctl panel
  # Or simply (panel is default):
  plantnode-ctl

  # Launch panel for a specific node
  plantnode-ctl panel --node 192.168.4.16
  plantnode-ctl --node "Kitchen Basil"`,
	RunE: runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	c, err := nodeClient()
	if err != nil {
		return err
	}

	// Verify we can connect before taking over the terminal
	ctx, cancel := commandContext()
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}

	if err := tui.Run(c); err != nil {
		return fmt.Errorf("panel error: %w", err)
	}

	return nil
}

// provisionCmd submits WiFi credentials to a node in portal mode
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision WiFi credentials to a node in portal mode",
	Long: `Submit WiFi credentials to a node running its configuration portal.

A node that cannot join any network brings up an open access point (default
SSID "Wifi_Plant_Node_AP") with a captive web form. Connect your computer to
that access point first, then run this command. It prompts for the SSID and
passphrase of your home network and submits them to the portal; the node then
reboots its connection onto your network.`,
	Example: `  # Provision via the portal's default address
  plantnode-ctl provision

  # Portal on a non-default address
  plantnode-ctl provision --portal http://192.168.4.1`,
	RunE: runProvision,
}

var portalURL string

func init() {
	provisionCmd.Flags().StringVar(&portalURL, "portal", "http://192.168.4.1", "Configuration portal base URL")
}

func runProvision(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Network SSID: ")
	ssid, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read SSID: %w", err)
	}
	ssid = strings.TrimSpace(ssid)
	if ssid == "" {
		return fmt.Errorf("SSID must not be empty")
	}

	fmt.Print("Passphrase (input hidden): ")
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}

	form := url.Values{}
	form.Set("ssid", ssid)
	form.Set("passphrase", string(passphrase))

	httpClient := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpClient.PostForm(strings.TrimSuffix(portalURL, "/")+"/save", form)
	if err != nil {
		return fmt.Errorf("failed to reach portal at %s: %w", portalURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("portal rejected credentials (HTTP %d)", resp.StatusCode)
	}

	fmt.Printf("✓ credentials for %q submitted\n", ssid)
	fmt.Println("The node is now leaving its access point and joining your network.")
	fmt.Println("Reconnect to your normal WiFi and run 'plantnode-ctl scan' to find it.")

	return nil
}

// nodesCmd manages the local node registry
var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List and manage registered nodes",
	Long: `List the nodes remembered in the local registry and manage their
client-side metadata: nicknames, plants and moisture alert thresholds.

The registry is filled automatically by 'plantnode-ctl scan'.`,
	Example: `  # List registered nodes
  plantnode-ctl nodes

  # Give a node a nickname
  plantnode-ctl nodes name a1b2c3 "Kitchen Basil"

  # Record what is growing and when to warn about dry soil
  plantnode-ctl nodes plant a1b2c3 basil
  plantnode-ctl nodes alert a1b2c3 400`,
	RunE: runNodesList,
}

func init() {
	nodesCmd.AddCommand(nodesNameCmd)
	nodesCmd.AddCommand(nodesPlantCmd)
	nodesCmd.AddCommand(nodesAlertCmd)
}

func runNodesList(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load node registry: %w", err)
	}

	if len(registry.Nodes) == 0 {
		fmt.Println("No nodes registered. Run 'plantnode-ctl scan' to discover some.")
		return nil
	}

	for serial, node := range registry.Nodes {
		name := serial
		if node.Nickname != "" {
			name = fmt.Sprintf("%s (%s)", node.Nickname, serial)
		}
		fmt.Println(name)
		if node.Plant != "" {
			fmt.Printf("   Plant:    %s\n", node.Plant)
		}
		if node.LastIP != "" {
			fmt.Printf("   Last IP:  %s\n", node.LastIP)
		}
		if !node.LastSeen.IsZero() {
			fmt.Printf("   Last seen: %s\n", node.LastSeen.Format(time.RFC1123))
		}
		if node.MoistureAlert > 0 {
			fmt.Printf("   Moisture alert: below %d\n", node.MoistureAlert)
		}
		if len(node.Presets) > 0 {
			names := make([]string, 0, len(node.Presets))
			for name := range node.Presets {
				names = append(names, name)
			}
			fmt.Printf("   Presets:  %s\n", strings.Join(names, ", "))
		}
		fmt.Println()
	}

	return nil
}

var nodesNameCmd = &cobra.Command{
	Use:   "name <serial> <nickname>",
	Short: "Set a node's nickname",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load node registry: %w", err)
		}
		registry.SetNodeNickname(args[0], args[1])
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save node registry: %w", err)
		}
		fmt.Printf("✓ node %s is now %q\n", args[0], args[1])
		return nil
	},
}

var nodesPlantCmd = &cobra.Command{
	Use:   "plant <serial> <plant>",
	Short: "Record what is growing under a node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load node registry: %w", err)
		}
		registry.SetNodePlant(args[0], args[1])
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save node registry: %w", err)
		}
		fmt.Printf("✓ node %s is growing %s\n", args[0], args[1])
		return nil
	},
}

var nodesAlertCmd = &cobra.Command{
	Use:   "alert <serial> <threshold>",
	Short: "Set a node's moisture alert threshold",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, err := strconv.Atoi(args[1])
		if err != nil || threshold < 0 || threshold > 1023 {
			return fmt.Errorf("invalid threshold %q (expected 0-1023)", args[1])
		}
		registry, err := config.LoadRegistry()
		if err != nil {
			return fmt.Errorf("failed to load node registry: %w", err)
		}
		registry.EnsureNode(args[0]).MoistureAlert = threshold
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save node registry: %w", err)
		}
		fmt.Printf("✓ node %s alerts below %d\n", args[0], threshold)
		return nil
	},
}

// commandContext returns the bounded context used by one-shot commands.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// nodeClient resolves the target node and returns a client for it.
func nodeClient() (*client.Client, error) {
	ip, err := resolveNodeIP()
	if err != nil {
		return nil, err
	}
	return client.New(ip, nodePort), nil
}

// resolveNodeIP turns --node into an IP address: a literal IP is used as
// given, a serial or nickname is looked up in the registry, and an empty
// flag falls back to mDNS discovery.
func resolveNodeIP() (string, error) {
	if net.ParseIP(nodeRef) != nil {
		return nodeRef, nil
	}

	if nodeRef != "" {
		registry, err := config.LoadRegistry()
		if err != nil {
			return "", fmt.Errorf("failed to load node registry: %w", err)
		}
		serial, node := registry.ResolveNode(nodeRef)
		if node == nil {
			return "", fmt.Errorf("node %q not found in registry (run 'plantnode-ctl scan' first)", nodeRef)
		}
		if node.LastIP == "" {
			return "", fmt.Errorf("node %s has no recorded IP, run 'plantnode-ctl scan'", serial)
		}
		return node.LastIP, nil
	}

	// Try discovery
	fmt.Println("No node specified, attempting auto-discovery...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nodes, err := discovery.NewScanner().Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}

	if len(nodes) == 0 {
		return "", fmt.Errorf("no nodes found. Use --node flag to specify one")
	}

	if len(nodes) > 1 {
		fmt.Printf("Found %d nodes:\n", len(nodes))
		for i, node := range nodes {
			fmt.Printf("%d. %s (%s)\n", i+1, node.Serial, node.IP)
		}
		return "", fmt.Errorf("multiple nodes found. Use --node flag to specify which one")
	}

	node := nodes[0]
	fmt.Printf("Found node: %s (%s)\n\n", node.Serial, node.IP)
	return node.IP, nil
}
