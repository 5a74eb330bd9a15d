package netman

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/greenshed/plantnode/internal/logging"
	"github.com/greenshed/plantnode/internal/netconfig"
)

// NMCli drives a real WiFi interface through NetworkManager's nmcli tool.
// This is what the daemon uses on a Raspberry Pi class host.
type NMCli struct {
	// Interface is the wireless device name, e.g. "wlan0".
	Interface string

	// hotspot connection name while the configuration AP is up
	hotspotName string
}

// NewNMCli returns a NetworkManager-backed radio for the given interface.
func NewNMCli(iface string) *NMCli {
	return &NMCli{Interface: iface}
}

// Join connects the interface to the network named in creds.
func (n *NMCli) Join(ctx context.Context, creds netconfig.Credentials) error {
	args := []string{"dev", "wifi", "connect", creds.SSID, "ifname", n.Interface}
	if creds.Passphrase != "" {
		args = append(args, "password", creds.Passphrase)
	}

	out, err := exec.CommandContext(ctx, "nmcli", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("nmcli connect %s: %w: %s", creds.SSID, err, strings.TrimSpace(string(out)))
	}

	logging.Info("joined network", zap.String("ssid", creds.SSID), zap.String("interface", n.Interface))
	return nil
}

// LinkUp reports whether the interface is in the connected state.
func (n *NMCli) LinkUp() bool {
	out, err := exec.Command("nmcli", "-t", "-f", "DEVICE,STATE", "dev", "status").Output()
	if err != nil {
		return false
	}

	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.SplitN(line, ":", 2)
		if len(fields) == 2 && fields[0] == n.Interface {
			return fields[1] == "connected"
		}
	}
	return false
}

// StartAccessPoint brings the interface up as an open hotspot for the
// configuration portal.
func (n *NMCli) StartAccessPoint(ssid, passphrase string) error {
	name := "plantnode-portal"
	out, err := exec.Command("nmcli", "dev", "wifi", "hotspot",
		"ifname", n.Interface, "con-name", name,
		"ssid", ssid, "password", passphrase).CombinedOutput()
	if err != nil {
		return fmt.Errorf("nmcli hotspot: %w: %s", err, strings.TrimSpace(string(out)))
	}

	n.hotspotName = name
	logging.Info("access point started", zap.String("ssid", ssid), zap.String("interface", n.Interface))
	return nil
}

// StopAccessPoint tears the hotspot connection down.
func (n *NMCli) StopAccessPoint() error {
	if n.hotspotName == "" {
		return fmt.Errorf("access point not running")
	}

	out, err := exec.Command("nmcli", "con", "down", n.hotspotName).CombinedOutput()
	if err != nil {
		return fmt.Errorf("nmcli con down: %w: %s", err, strings.TrimSpace(string(out)))
	}

	n.hotspotName = ""
	return nil
}
