package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "plantnode") {
		t.Errorf("GetConfigDir() = %v, should contain 'plantnode'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Nodes == nil {
		t.Error("NewRegistry().Nodes should not be nil")
	}

	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}

	if reg.Preferences.AutoDiscover != true {
		t.Error("NewRegistry().Preferences.AutoDiscover should be true by default")
	}

	if reg.Preferences.DiscoverTimeout != 10 {
		t.Errorf("NewRegistry().Preferences.DiscoverTimeout = %v, want 10", reg.Preferences.DiscoverTimeout)
	}
}

func TestRegistryEnsureNode(t *testing.T) {
	reg := NewRegistry()

	// First call should create the node
	node1 := reg.EnsureNode("a1b2c3")
	if node1 == nil {
		t.Fatal("EnsureNode() returned nil")
	}

	// Second call should return the same node
	node2 := reg.EnsureNode("a1b2c3")
	if node1 != node2 {
		t.Error("EnsureNode() should return same instance for same serial")
	}

	node3 := reg.EnsureNode("d4e5f6")
	if node1 == node3 {
		t.Error("EnsureNode() should create new instance for different serial")
	}
}

func TestRegistryUpdateNodeLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateNodeLastSeen("a1b2c3", "192.168.1.42")
	after := time.Now()

	node := reg.GetNode("a1b2c3")
	if node == nil {
		t.Fatal("Node should exist after UpdateNodeLastSeen()")
	}

	if node.LastIP != "192.168.1.42" {
		t.Errorf("LastIP = %v, want 192.168.1.42", node.LastIP)
	}

	if node.LastSeen.Before(before) || node.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", node.LastSeen, before, after)
	}
}

func TestRegistrySetPreset(t *testing.T) {
	reg := NewRegistry()

	reg.SetPreset("a1b2c3", "evening", &Preset{Color: "orange", Function: "smooth"})

	node := reg.GetNode("a1b2c3")
	if node == nil {
		t.Fatal("Node should exist after SetPreset()")
	}

	preset := node.Presets["evening"]
	if preset == nil {
		t.Fatal("Preset 'evening' should exist")
	}

	if preset.Color != "orange" {
		t.Errorf("Preset.Color = %v, want 'orange'", preset.Color)
	}

	if preset.Function != "smooth" {
		t.Errorf("Preset.Function = %v, want 'smooth'", preset.Function)
	}
}

func TestRegistrySetNodeNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetNodeNickname("a1b2c3", "Kitchen Basil")

	node := reg.GetNode("a1b2c3")
	if node == nil {
		t.Fatal("Node should exist after SetNodeNickname()")
	}

	if node.Nickname != "Kitchen Basil" {
		t.Errorf("Nickname = %v, want 'Kitchen Basil'", node.Nickname)
	}
}

func TestRegistryResolveNode(t *testing.T) {
	reg := NewRegistry()
	reg.SetNodeNickname("a1b2c3", "Kitchen Basil")

	serial, node := reg.ResolveNode("a1b2c3")
	if serial != "a1b2c3" || node == nil {
		t.Errorf("ResolveNode(serial) = %q, %v", serial, node)
	}

	serial, node = reg.ResolveNode("Kitchen Basil")
	if serial != "a1b2c3" || node == nil {
		t.Errorf("ResolveNode(nickname) = %q, %v", serial, node)
	}

	if _, node := reg.ResolveNode("nope"); node != nil {
		t.Error("ResolveNode(unknown) should return nil node")
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	testConfigPath := filepath.Join(tmpDir, "config.yaml")

	reg := NewRegistry()
	reg.SetNodeNickname("a1b2c3", "Test Node")
	reg.SetNodePlant("a1b2c3", "basil")
	reg.SetPreset("a1b2c3", "night", &Preset{Color: "blue", Brightness: "down"})
	reg.EnsureNode("a1b2c3").MoistureAlert = 400

	if err := reg.saveToFile(testConfigPath); err != nil {
		t.Fatalf("saveToFile() error = %v", err)
	}

	loadedReg, err := loadRegistryFromFile(testConfigPath)
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}

	node := loadedReg.GetNode("a1b2c3")
	if node == nil {
		t.Fatal("Node should exist in loaded registry")
	}

	if node.Nickname != "Test Node" {
		t.Errorf("Loaded nickname = %v, want 'Test Node'", node.Nickname)
	}

	if node.Plant != "basil" {
		t.Errorf("Loaded plant = %v, want 'basil'", node.Plant)
	}

	if node.MoistureAlert != 400 {
		t.Errorf("Loaded moisture_alert = %v, want 400", node.MoistureAlert)
	}

	preset := node.Presets["night"]
	if preset == nil {
		t.Fatal("Preset 'night' should exist in loaded registry")
	}

	if preset.Color != "blue" || preset.Brightness != "down" {
		t.Errorf("Loaded preset = %+v", preset)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")

	reg, err := loadRegistryFromFile(path)
	if err != nil {
		t.Fatalf("loadRegistryFromFile() error = %v", err)
	}

	if reg.Version != 1 || reg.Preferences == nil {
		t.Errorf("missing file should yield default registry, got %+v", reg)
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	reg := NewRegistry()
	reg.Version = 7

	if err := reg.saveToFile(path); err != nil {
		t.Fatalf("saveToFile() error = %v", err)
	}

	if _, err := loadRegistryFromFile(path); err == nil {
		t.Error("expected error for unsupported config version")
	}
}

func BenchmarkEnsureNode(b *testing.B) {
	reg := NewRegistry()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.EnsureNode("a1b2c3")
	}
}
