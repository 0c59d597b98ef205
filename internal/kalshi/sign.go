package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/arborwatch/xvenue-arb/internal/domain"
)

const wsHandshakePath = "/trade-api/ws/v2"

// signer holds the RSA key used to authenticate the WebSocket handshake.
// A nil signer means the venue is disabled; callers must check that
// before dialing.
type signer struct {
	keyID      string
	privateKey *rsa.PrivateKey
}

// loadSigner reads and parses the PEM-encoded RSA private key at path. It
// tries PKCS8 first, the more common modern encoding, and falls back to
// PKCS1.
func loadSigner(keyID, path string) (*signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kalshi: read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("kalshi: decode PEM block: no block found")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("kalshi: key is not RSA")
		}
		return &signer{keyID: keyID, privateKey: rsaKey}, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("kalshi: parse private key: %w", err)
	}
	return &signer{keyID: keyID, privateKey: rsaKey}, nil
}

// authHeaders signs "<timestamp>GET<path>" with RSA-PSS/SHA-256 and
// returns the three KALSHI-ACCESS-* headers required on the WebSocket
// handshake request.
func (s *signer) authHeaders() (http.Header, error) {
	timestamp := time.Now().UnixMilli()
	message := fmt.Sprintf("%dGET%s", timestamp, wsHandshakePath)

	hashed := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPSS(rand.Reader, s.privateKey, crypto.SHA256, hashed[:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSigningFailed, err)
	}

	headers := http.Header{}
	headers.Set("KALSHI-ACCESS-KEY", s.keyID)
	headers.Set("KALSHI-ACCESS-SIGNATURE", base64.StdEncoding.EncodeToString(signature))
	headers.Set("KALSHI-ACCESS-TIMESTAMP", fmt.Sprintf("%d", timestamp))
	return headers, nil
}
