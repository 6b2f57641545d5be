package encryption

import (
	"bytes"
	"fmt"
	"io"

	"mig-go/internal/mig"
)

// testHeader is prepended to data by TestSealer so sealed output is
// clearly different from plaintext while remaining deterministic and
// reversible.
var testHeader = []byte("MIGSEAL\x00")

// TestSealer is a simple, deterministic sealer for testing. It prepends
// a fixed 8-byte header when sealing and strips it when opening,
// requiring no crypto and no key files.
type TestSealer struct {
	setupCalled bool
}

var _ mig.Sealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (s *TestSealer) Setup(passphrase string) error {
	s.setupCalled = true
	return nil
}

func (s *TestSealer) Seal(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (s *TestSealer) Unlock(passphrase string) (mig.OpenContext, error) {
	return &TestOpenContext{}, nil
}

func (s *TestSealer) IsConfigured() bool {
	return true
}

// TestOpenContext strips the test header added by TestSealer.
type TestOpenContext struct{}

var _ mig.OpenContext = (*TestOpenContext)(nil)

func (c *TestOpenContext) Open(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test seal header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
