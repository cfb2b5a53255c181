package services

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFetchTestService(client *http.Client) *StorageService {
	return &StorageService{
		bucket:     "test-bucket",
		baseURL:    "https://test-bucket",
		httpClient: client,
	}
}

func TestFetchImageSizeCeiling(t *testing.T) {
	tests := []struct {
		name string
		size int
		ok   bool
	}{
		{"exactly at ceiling", MaxRehostedImageBytes, true},
		{"one byte over", MaxRehostedImageBytes + 1, false},
		{"small image", 1024, true},
	}

	for _, test := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write(bytes.Repeat([]byte{0xAB}, test.size))
		}))

		svc := newFetchTestService(server.Client())
		body, contentType, ok := svc.fetchImage(context.Background(), server.URL)
		server.Close()

		if ok != test.ok {
			t.Errorf("%s: ok = %v, expected %v", test.name, ok, test.ok)
			continue
		}
		if !test.ok {
			continue
		}
		if len(body) != test.size {
			t.Errorf("%s: read %d bytes, expected %d", test.name, len(body), test.size)
		}
		if contentType != "image/png" {
			t.Errorf("%s: content type = %q, expected image/png", test.name, contentType)
		}
	}
}

func TestFetchImageNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	svc := newFetchTestService(server.Client())
	if _, _, ok := svc.fetchImage(context.Background(), server.URL); ok {
		t.Error("fetchImage should fail on 404")
	}
}

func TestFetchImageStripsQuotes(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("img"))
	}))
	defer server.Close()

	svc := newFetchTestService(server.Client())
	_, _, ok := svc.fetchImage(context.Background(), `"`+server.URL+`/shoe.jpg"`)
	if !ok {
		t.Fatal("fetchImage failed")
	}
	if gotPath != "/shoe.jpg" {
		t.Errorf("requested path = %q, expected /shoe.jpg", gotPath)
	}
}

func TestFetchImageDefaultsContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil // suppress sniffing
		w.Write([]byte{0xFF, 0xD8, 0xFF})
	}))
	defer server.Close()

	svc := newFetchTestService(server.Client())
	_, contentType, ok := svc.fetchImage(context.Background(), server.URL)
	if !ok {
		t.Fatal("fetchImage failed")
	}
	if contentType != "image/jpeg" {
		t.Errorf("content type = %q, expected image/jpeg default", contentType)
	}
}

func TestExtensionForContentType(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/jpeg", ".jpg"},
		{"application/octet-stream", ".jpg"},
	}

	for _, test := range tests {
		if got := extensionForContentType(test.contentType); got != test.expected {
			t.Errorf("extensionForContentType(%q) = %q, expected %q", test.contentType, got, test.expected)
		}
	}
}
