package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mig-go/internal/config"
)

func newTestSealerConfig(t *testing.T) config.SealingConfig {
	t.Helper()
	dir := t.TempDir()
	return config.SealingConfig{
		PublicKeyPath:  filepath.Join(dir, "keys", "mig.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "mig.key"),
	}
}

func TestAgeSealerSetup(t *testing.T) {
	cfg := newTestSealerConfig(t)
	sealer := NewAgeSealer(cfg)

	if sealer.IsConfigured() {
		t.Error("sealer reports configured before Setup")
	}

	if err := sealer.Setup("secret"); err != nil {
		t.Fatal(err)
	}
	if !sealer.IsConfigured() {
		t.Error("sealer not configured after Setup")
	}

	pub, err := os.ReadFile(cfg.PublicKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(pub), "age1") {
		t.Errorf("public key does not look like an age recipient: %q", pub)
	}

	// The private key file is itself age-encrypted.
	priv, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(priv), "age-encryption.org/v1") {
		t.Errorf("private key is not passphrase-encrypted: %q", priv[:32])
	}
}

func TestAgeSealerRoundTrip(t *testing.T) {
	sealer := NewAgeSealer(newTestSealerConfig(t))
	if err := sealer.Setup("secret"); err != nil {
		t.Fatal(err)
	}

	plaintext := []byte(`[{"RelativePath":"a.txt"}]`)

	var sealed bytes.Buffer
	if err := sealer.Seal(bytes.NewReader(plaintext), &sealed); err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(sealed.Bytes(), []byte("a.txt")) {
		t.Error("sealed output contains plaintext")
	}

	open, err := sealer.Unlock("secret")
	if err != nil {
		t.Fatal(err)
	}

	var opened bytes.Buffer
	if err := open.Open(bytes.NewReader(sealed.Bytes()), &opened); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(opened.Bytes(), plaintext) {
		t.Errorf("round trip mismatch: %q", opened.Bytes())
	}
}

func TestAgeSealerWrongPassphrase(t *testing.T) {
	sealer := NewAgeSealer(newTestSealerConfig(t))
	if err := sealer.Setup("secret"); err != nil {
		t.Fatal(err)
	}

	if _, err := sealer.Unlock("wrong"); err == nil {
		t.Error("expected error for wrong passphrase")
	}
}

func TestNewSealerFromConfig(t *testing.T) {
	if _, err := NewSealerFromConfig(config.SealingConfig{Type: "age"}); err != nil {
		t.Errorf("age: %v", err)
	}
	if _, err := NewSealerFromConfig(config.SealingConfig{}); err != nil {
		t.Errorf("default: %v", err)
	}
	if _, err := NewSealerFromConfig(config.SealingConfig{Type: "test"}); err != nil {
		t.Errorf("test: %v", err)
	}
	if _, err := NewSealerFromConfig(config.SealingConfig{Type: "rot13"}); err == nil {
		t.Error("expected error for unknown type")
	}
}
