package config

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig("/srv/mig")

	if cfg.LogDir != filepath.Join("/srv/mig", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir != filepath.Join("/srv/mig", "data") {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Transfer.Binary != "rclone" {
		t.Errorf("Transfer.Binary = %q", cfg.Transfer.Binary)
	}
	if cfg.Restore.Workers != 4 {
		t.Errorf("Restore.Workers = %d", cfg.Restore.Workers)
	}
	if cfg.Sealing.PublicKeyPath != filepath.Join("/srv/mig", "keys", "mig.pub") {
		t.Errorf("Sealing.PublicKeyPath = %q", cfg.Sealing.PublicKeyPath)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := NewConfig("/srv/mig")
	cfg.Transfer.ConfigFile = "/etc/rclone.conf"
	cfg.Transfer.ExtraArgs = []string{"--checksum", "--transfers=8"}
	cfg.Restore.Strict = true

	m := &Manager{}
	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.BaseDir != cfg.BaseDir || got.Transfer.ConfigFile != cfg.Transfer.ConfigFile {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Transfer.ExtraArgs) != 2 || got.Transfer.ExtraArgs[1] != "--transfers=8" {
		t.Errorf("ExtraArgs = %v", got.Transfer.ExtraArgs)
	}
	if !got.Restore.Strict {
		t.Error("Restore.Strict lost in round trip")
	}
}

func TestReadInvalidConfig(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(bytes.NewReader([]byte("not = [valid"))); err == nil {
		t.Error("expected decode error")
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "mig.toml")
	cfg := NewConfig("/srv/mig")

	if err := Init(path, cfg); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.BaseDir != "/srv/mig" {
		t.Errorf("BaseDir = %q", got.BaseDir)
	}

	// A second init must refuse to overwrite.
	if err := Init(path, cfg); err == nil {
		t.Error("expected error for existing config")
	}
}

func TestReadFromFileMissing(t *testing.T) {
	if _, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
