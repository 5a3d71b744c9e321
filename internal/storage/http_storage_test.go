package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newTestFetcher(baseURL string) *HTTPAssetFetcher {
	f := NewHTTPAssetFetcher(baseURL, 5*time.Second)
	f.backoff = 10 * time.Millisecond
	return f
}

func TestHTTPAssetFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int // Status codes to return in sequence
		expectRetries int   // Expected number of requests
		expectError   bool
		errorContains string
	}{
		{
			name:          "Success on first attempt",
			responses:     []int{200},
			expectRetries: 1,
		},
		{
			name:          "Success on second attempt after 5xx",
			responses:     []int{500, 200},
			expectRetries: 2,
		},
		{
			name:          "404 - not found, no retry",
			responses:     []int{404},
			expectRetries: 1,
			expectError:   true,
			errorContains: "asset not found",
		},
		{
			name:          "4xx after 5xx - should retry until 4xx then stop",
			responses:     []int{500, 403},
			expectRetries: 2,
			expectError:   true,
			errorContains: "client error: status code 403",
		},
		{
			name:          "All 5xx errors - retry all attempts",
			responses:     []int{500, 502, 503},
			expectRetries: 3,
			expectError:   true,
			errorContains: "server error: status code 503",
		},
	}

	data := pngBytes(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestCount := 0
			var gotPath string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				if requestCount >= len(tt.responses) {
					w.WriteHeader(500)
					return
				}
				statusCode := tt.responses[requestCount]
				requestCount++
				if statusCode == 200 {
					w.Header().Set("Content-Type", "image/png")
					w.Write(data)
					return
				}
				w.WriteHeader(statusCode)
				w.Write([]byte(fmt.Sprintf("Error %d", statusCode)))
			}))
			defer server.Close()

			blob, err := newTestFetcher(server.URL+"/").Fetch(context.Background(), "/sketchs/men/loafer.png")

			if requestCount != tt.expectRetries {
				t.Errorf("Expected %d requests, got %d", tt.expectRetries, requestCount)
			}
			if gotPath != "/sketchs/men/loafer.png" {
				t.Errorf("Expected path /sketchs/men/loafer.png, got %s", gotPath)
			}

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error, but got none")
				} else if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain '%s', got: %s", tt.errorContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %s", err.Error())
			}
			if blob.MimeType != "image/png" || blob.Name != "loafer.png" || !bytes.Equal(blob.Data, data) {
				t.Errorf("Unexpected blob: name=%s mime=%s len=%d", blob.Name, blob.MimeType, len(blob.Data))
			}
		})
	}
}

func TestHTTPAssetFetcher_NetworkError_Retry(t *testing.T) {
	requestCount := 0
	data := pngBytes(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount < 3 {
			// Simulate network error by closing connection
			hj, ok := w.(http.Hijacker)
			if ok {
				conn, _, _ := hj.Hijack()
				conn.Close()
			}
			return
		}
		w.Write(data)
	}))
	defer server.Close()

	start := time.Now()
	_, err := newTestFetcher(server.URL).Fetch(context.Background(), "parts/strap1.png")
	duration := time.Since(start)

	if err != nil {
		t.Errorf("Expected success after retries, got error: %s", err.Error())
	}
	if requestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", requestCount)
	}
	// 10ms + 20ms of backoff
	if duration < 30*time.Millisecond {
		t.Errorf("Expected at least 30ms due to backoff, took %v", duration)
	}
}

func TestHTTPAssetFetcher_NotAnImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not found page</html>"))
	}))
	defer server.Close()

	_, err := newTestFetcher(server.URL).Fetch(context.Background(), "/materials/leather")
	if !errors.Is(err, ErrNotAnImage) {
		t.Errorf("Expected ErrNotAnImage, got %v", err)
	}
}

func TestHTTPAssetFetcher_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestFetcher(server.URL).Fetch(ctx, "/parts/strap1.png")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLocalAssetFetcher(t *testing.T) {
	root := t.TempDir()
	data := pngBytes(t)
	if err := os.MkdirAll(filepath.Join(root, "materials"), 0o755); err != nil {
		t.Fatal(err)
	}
	// No extension: the type has to be sniffed from content.
	if err := os.WriteFile(filepath.Join(root, "materials", "leather1"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewLocalAssetFetcher(root)
	blob, err := f.Fetch(context.Background(), "/materials/leather1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if blob.MimeType != "image/png" {
		t.Errorf("Expected sniffed image/png, got %s", blob.MimeType)
	}

	if _, err := f.Fetch(context.Background(), "/materials/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	// Traversal is clamped to the root.
	if _, err := f.Fetch(context.Background(), "../../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for traversal, got %v", err)
	}
	if _, err := f.Fetch(context.Background(), "/secret.txt"); !errors.Is(err, ErrNotAnImage) {
		t.Errorf("Expected ErrNotAnImage, got %v", err)
	}
	if _, err := f.Fetch(context.Background(), ""); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath, got %v", err)
	}
}

func TestBlobName(t *testing.T) {
	if got := blobName("/sketchs/men/loafer.JPG"); got != "sketchs/men/loafer.JPG" {
		t.Errorf("Expected sketchs/men/loafer.JPG, got %s", got)
	}
}
