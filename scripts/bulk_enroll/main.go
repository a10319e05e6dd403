// Command bulk_enroll walks a directory of face images named
// <student_id>.<ext> and registers each one through the API. Useful for
// seeding a deployment from an existing photo archive.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func main() {
	var (
		baseURL string
		dir     string
		token   string
		timeout time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&dir, "dir", "images/faces", "Directory of <student_id>.jpg images")
	flag.StringVar(&token, "token", "", "Bearer token for a lecturer account")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("a -token is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("failed to read directory: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var enrolled, failed int

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			continue
		}
		studentID, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), ext), 10, 64)
		if err != nil {
			log.Printf("skip %s: filename is not a student id", entry.Name())
			continue
		}

		if err := enroll(client, baseURL, token, studentID, filepath.Join(dir, entry.Name())); err != nil {
			log.Printf("FAIL student %d: %v", studentID, err)
			failed++
			continue
		}
		log.Printf("ok student %d", studentID)
		enrolled++
	}

	fmt.Printf("enrolled=%d failed=%d\n", enrolled, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func enroll(client *http.Client, baseURL, token string, studentID int64, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, file); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/students/%d/face", baseURL, studentID)
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		body, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
			return fmt.Errorf("%s: %s", resp.Status, envelope.Error.Message)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
