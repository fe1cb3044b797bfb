package ws

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"latbot/internal/config"
)

// Signer produces Gate.io websocket API signatures. The signed string is
// "api\n{channel}\n{params}\n{timestamp}" keyed with HMAC-SHA512 over the
// API secret, rendered as lowercase hex.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, config.ErrMissingCredentials
	}
	return &Signer{secret: []byte(secret)}, nil
}

func (s *Signer) Sign(channel string, params []byte, ts int64) string {
	payload := fmt.Sprintf("api\n%s\n%s\n%d", channel, params, ts)

	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
