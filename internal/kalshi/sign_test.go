package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKey(t *testing.T) (string, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, pemBytes, 0600))
	return path, key
}

func TestLoadSigner_PKCS8(t *testing.T) {
	path, _ := writeTestKey(t)
	s, err := loadSigner("key-id", path)
	require.NoError(t, err)
	assert.Equal(t, "key-id", s.keyID)
}

func TestLoadSigner_MissingFile(t *testing.T) {
	_, err := loadSigner("key-id", "/nonexistent/path.pem")
	assert.Error(t, err)
}

func TestAuthHeaders_ProducesVerifiableSignature(t *testing.T) {
	path, key := writeTestKey(t)
	s, err := loadSigner("key-id", path)
	require.NoError(t, err)

	headers, err := s.authHeaders()
	require.NoError(t, err)

	assert.Equal(t, "key-id", headers.Get("KALSHI-ACCESS-KEY"))
	timestamp := headers.Get("KALSHI-ACCESS-TIMESTAMP")
	require.NotEmpty(t, timestamp)

	sigB64 := headers.Get("KALSHI-ACCESS-SIGNATURE")
	sig, err := base64.StdEncoding.DecodeString(sigB64)
	require.NoError(t, err)

	message := timestamp + "GET" + wsHandshakePath
	hashed := sha256.Sum256([]byte(message))
	err = rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, hashed[:], sig, nil)
	assert.NoError(t, err, "signature must verify with nil PSSOptions")
}

func TestAuthHeaders_TimestampHeaderHasNoMethodText(t *testing.T) {
	path, _ := writeTestKey(t)
	s, err := loadSigner("key-id", path)
	require.NoError(t, err)

	headers, err := s.authHeaders()
	require.NoError(t, err)
	ts := headers.Get("KALSHI-ACCESS-TIMESTAMP")
	assert.False(t, strings.Contains(ts, "GET"))
}
