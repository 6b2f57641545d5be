package encryption

import (
	"bytes"
	"strings"
	"testing"
)

func TestTestSealerRoundTrip(t *testing.T) {
	sealer := NewTestSealer()

	plaintext := []byte("hello")
	var sealed bytes.Buffer
	if err := sealer.Seal(bytes.NewReader(plaintext), &sealed); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(sealed.Bytes(), plaintext) {
		t.Error("sealed output identical to plaintext")
	}

	open, err := sealer.Unlock("any")
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

func TestTestOpenContextRejectsBadHeader(t *testing.T) {
	open := &TestOpenContext{}

	var out bytes.Buffer
	if err := open.Open(strings.NewReader("not sealed data"), &out); err == nil {
		t.Error("expected error for missing header")
	}
}
