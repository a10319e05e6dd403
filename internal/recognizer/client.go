package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Result is the comparison outcome for one (probe, reference) pair. Distance
// is the raw dissimilarity score reported by the face service, lower meaning
// more similar. Verified is the service's own accept/reject decision; the
// match selector applies its configured threshold to Distance instead.
type Result struct {
	Distance float64 `json:"distance"`
	Verified bool    `json:"verified"`
}

// Client calls the face comparison sidecar. The sidecar wraps the actual
// face model; this client treats it as a black box that scores image pairs.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the comparison service at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Verify compares probe image bytes against a stored reference image and
// returns the service's distance score. Any failure here — unreadable
// reference, transport error, no detectable face — is a per-candidate
// comparison error; callers are expected to skip the candidate and continue.
func (c *Client) Verify(ctx context.Context, probe []byte, referencePath string) (*Result, error) {
	reference, err := os.Open(referencePath)
	if err != nil {
		return nil, fmt.Errorf("open reference image: %w", err)
	}
	defer reference.Close() //nolint:errcheck

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("probe", "probe.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(probe); err != nil {
		return nil, err
	}

	fw, err = w.CreateFormFile("reference", filepath.Base(referencePath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, reference); err != nil {
		return nil, fmt.Errorf("read reference image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("face service error %d: %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode face service response: %w", err)
	}
	return &result, nil
}

// Health checks if the face service is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("face service unavailable: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		return fmt.Errorf("face service unhealthy: %s", resp.Status)
	}
	return nil
}
