package recognizer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ref.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0o644))
	return path
}

func TestClientVerify(t *testing.T) {
	var gotProbe, gotReference bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, probeErr := r.FormFile("probe")
		_, _, refErr := r.FormFile("reference")
		gotProbe = probeErr == nil
		gotReference = refErr == nil
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"distance":0.23,"verified":true}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	result, err := client.Verify(context.Background(), []byte("probe-bytes"), writeTempImage(t))
	require.NoError(t, err)
	assert.True(t, gotProbe)
	assert.True(t, gotReference)
	assert.InDelta(t, 0.23, result.Distance, 1e-9)
	assert.True(t, result.Verified)
}

func TestClientVerifyServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no face detected", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	_, err := client.Verify(context.Background(), []byte("probe-bytes"), writeTempImage(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no face detected")
}

func TestClientVerifyMissingReference(t *testing.T) {
	client := New("http://localhost:0", time.Second)
	_, err := client.Verify(context.Background(), []byte("probe"), filepath.Join(t.TempDir(), "gone.jpg"))
	require.Error(t, err)
}

func TestClientHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	require.NoError(t, client.Health(context.Background()))
}
