package artifactory

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func writeKey(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.asc")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

func TestAddPublicKeyStreamsFile(t *testing.T) {
	stub := newStubServer(t)
	stub.reply("PUT gpg/key/public", http.StatusOK, ``)
	c := stub.client()
	c.SetAPIKey("")

	if err := c.AddPublicKey(context.Background(), writeKey(t, "PUBLIC KEY")); err != nil {
		t.Fatalf("AddPublicKey: %v", err)
	}
	puts := stub.calls(http.MethodPut)
	if len(puts) != 1 || string(puts[0].Body) != "PUBLIC KEY" {
		t.Fatalf("unexpected upload %#v", puts)
	}
	if puts[0].Header.Get(headerPassphrase) != "" {
		t.Fatalf("public key upload must not send a passphrase")
	}
}

func TestAddPrivateKeySendsPassphrase(t *testing.T) {
	stub := newStubServer(t)
	stub.reply("PUT gpg/key/private", http.StatusOK, ``)
	c := stub.client()
	c.SetAPIKey("")

	if err := c.AddPrivateKey(context.Background(), writeKey(t, "PRIVATE KEY"), "hunter2"); err != nil {
		t.Fatalf("AddPrivateKey: %v", err)
	}
	put := stub.calls(http.MethodPut)[0]
	if string(put.Body) != "PRIVATE KEY" {
		t.Fatalf("unexpected body %q", put.Body)
	}
	if put.Header.Get(headerPassphrase) != "hunter2" || put.Header.Get(headerAPIKey) != "secret" {
		t.Fatalf("unexpected headers %v", put.Header)
	}
}

func TestAddPublicKeyMissingFile(t *testing.T) {
	stub := newStubServer(t)
	c := stub.client()

	if err := c.AddPublicKey(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if n := stub.writeCount(); n != 0 {
		t.Fatalf("expected no request, got %d", n)
	}
}

func TestAddPrivateKeyRejected(t *testing.T) {
	stub := newStubServer(t)
	stub.reply("PUT gpg/key/private", http.StatusBadRequest, `wrong passphrase`)
	c := stub.client()

	if err := c.AddPrivateKey(context.Background(), writeKey(t, "K"), "bad"); err == nil {
		t.Fatalf("expected error")
	}
}
