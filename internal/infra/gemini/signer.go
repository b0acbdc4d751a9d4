package gemini

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/llenroc/Libra/internal/domain"
)

// Signer produces the headers Gemini requires to authenticate private REST
// calls and the order-event websocket upgrade.
type Signer struct {
	apiKey    string
	apiSecret string
	nonce     func() int64
}

// NewSigner creates a new Signer instance
func NewSigner(apiKey, apiSecret string) *Signer {
	return &Signer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		nonce:     func() int64 { return time.Now().UnixNano() / int64(time.Millisecond) },
	}
}

// GenerateHeaders signs a request descriptor.
// The payload is {"request": path, "nonce": n} base64-encoded; the
// signature is hex HMAC-SHA384 of that payload under the API secret.
func (s *Signer) GenerateHeaders(request string) (map[string]string, error) {
	if s.apiKey == "" || s.apiSecret == "" {
		return nil, &domain.AuthError{Request: request, Err: errors.New("missing api credentials")}
	}

	body := struct {
		Request string `json:"request"`
		Nonce   int64  `json:"nonce"`
	}{Request: request, Nonce: s.nonce()}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, &domain.AuthError{Request: request, Err: err}
	}

	payload := base64.StdEncoding.EncodeToString(raw)
	sign := computeHmacSha384(payload, s.apiSecret)

	headers := map[string]string{
		"X-GEMINI-APIKEY":    s.apiKey,
		"X-GEMINI-PAYLOAD":   payload,
		"X-GEMINI-SIGNATURE": sign,
		"Content-Type":       "text/plain",
		"Cache-Control":      "no-cache",
	}

	return headers, nil
}

func computeHmacSha384(message string, secret string) string {
	h := hmac.New(sha512.New384, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
