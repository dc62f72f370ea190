package gcstest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/gsutil/oauth"
)

// TestAccountEmail is the client_email of generated service account keys.
const TestAccountEmail = "tester@test-project.iam.gserviceaccount.com"

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
	keyErr  error
)

// RSAKey returns a process-wide 2048-bit test key.
func RSAKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		testKey, keyErr = rsa.GenerateKey(rand.Reader, 2048)
	})
	require.NoError(t, keyErr)
	return testKey
}

// PrivateKeyPEM returns the PKCS#8 PEM encoding of the test key.
func PrivateKeyPEM(t testing.TB) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(RSAKey(t))
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

// ServiceAccountKey returns a key document whose token_uri is tokenURI.
func ServiceAccountKey(t testing.TB, tokenURI string) *oauth.ServiceAccountKey {
	t.Helper()
	return &oauth.ServiceAccountKey{
		Type:         oauth.TypeServiceAccount,
		ProjectID:    "test-project",
		PrivateKeyID: "test-key-id",
		PrivateKey:   PrivateKeyPEM(t),
		ClientEmail:  TestAccountEmail,
		ClientID:     "1234567890",
		TokenURI:     tokenURI,
	}
}

// ServiceAccountJSON returns ServiceAccountKey encoded as JSON.
func ServiceAccountJSON(t testing.TB, tokenURI string) []byte {
	t.Helper()
	data, err := json.Marshal(ServiceAccountKey(t, tokenURI))
	require.NoError(t, err)
	return data
}
