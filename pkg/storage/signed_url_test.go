package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)

	token, expiresAt, err := signer.Sign("faces/11_alice_mwangi.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))

	filename, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "faces/11_alice_mwangi.jpg", filename)
}

func TestDownloadSignerRejectsExpiredToken(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Millisecond*10)

	token, _, err := signer.Sign("faces/11_alice_mwangi.jpg")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, err = signer.Verify(token)
	require.ErrorContains(t, err, "expired")
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)

	token, _, err := signer.Sign("faces/11_alice_mwangi.jpg")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := strings.Join([]string{parts[0], "Li4vc2VjcmV0", parts[2]}, ".")

	_, err = signer.Verify(forged)
	require.ErrorContains(t, err, "signature")

	_, err = NewDownloadSigner("other-secret", time.Hour).Verify(token)
	require.ErrorContains(t, err, "signature")
}
