package gemini

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/llenroc/Libra/internal/domain"
)

func TestGenerateHeaders(t *testing.T) {
	signer := NewSigner("test-key", "test-secret")
	signer.nonce = func() int64 { return 1700000000000 }

	headers, err := signer.GenerateHeaders("/v1/order/events")
	if err != nil {
		t.Fatalf("GenerateHeaders failed: %v", err)
	}

	if headers["X-GEMINI-APIKEY"] != "test-key" {
		t.Errorf("api key header = %s", headers["X-GEMINI-APIKEY"])
	}
	if headers["Content-Type"] != "text/plain" {
		t.Errorf("content type = %s", headers["Content-Type"])
	}

	raw, err := base64.StdEncoding.DecodeString(headers["X-GEMINI-PAYLOAD"])
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	want := `{"request":"/v1/order/events","nonce":1700000000000}`
	if string(raw) != want {
		t.Errorf("payload = %s, want %s", raw, want)
	}

	mac := hmac.New(sha512.New384, []byte("test-secret"))
	mac.Write([]byte(headers["X-GEMINI-PAYLOAD"]))
	if sig := hex.EncodeToString(mac.Sum(nil)); headers["X-GEMINI-SIGNATURE"] != sig {
		t.Errorf("signature = %s, want %s", headers["X-GEMINI-SIGNATURE"], sig)
	}
}

func TestGenerateHeaders_MissingCredentials(t *testing.T) {
	signer := NewSigner("", "")

	_, err := signer.GenerateHeaders("/v1/balances")
	if err == nil {
		t.Fatal("Expected error for missing credentials")
	}

	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		t.Errorf("error type = %T, want *domain.AuthError", err)
	}
}
