package barcode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vaulted/internal/cache"
	"vaulted/internal/config"
	"vaulted/pkg/models"

	"github.com/google/uuid"
)

func TestClean(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123-456-78", "12345678"},
		{" 0885176912345 ", "0885176912345"},
		{"0885 1769 1234 5", "0885176912345"},
		{"12345678", "12345678"},
		{"", ""},
	}

	for _, test := range tests {
		if got := Clean(test.input); got != test.expected {
			t.Errorf("Clean(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestExtractStyleID(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"style id label", "Air Max 90 Style ID: CD0881-100", "CD0881-100"},
		{"style label", "Dunk Low style: DD1391-100 mens", "DD1391-100"},
		{"sku label", "Yeezy Boost SKU: GW1229", "GW1229"},
		{"style id wins over sku", "Jordan 1 Style ID: 555088-134 SKU: ABC", "555088-134"},
		{"no label", "Samba OG white", ""},
	}

	for _, test := range tests {
		if got := extractStyleID(test.title); got != test.expected {
			t.Errorf("%s: extractStyleID(%q) = %q, expected %q", test.name, test.title, got, test.expected)
		}
	}
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewService(config.BarcodeConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		CacheTTL: time.Hour,
	}, nil, nil)
	return svc, server
}

func TestLookupRejectsShortCodes(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("lookup should not reach the API for an invalid code")
	})

	tests := []string{"1234567", "123-4567", "  12 34 ", ""}
	for _, code := range tests {
		if _, err := svc.Lookup(context.Background(), code, uuid.New()); err != ErrInvalidBarcode {
			t.Errorf("Lookup(%q) error = %v, expected ErrInvalidBarcode", code, err)
		}
	}
}

func TestLookupAcceptsMinimumLength(t *testing.T) {
	var gotCode string
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotCode = r.URL.Query().Get("barcode")
		w.Write([]byte(`{"products":[{"barcode_number":"12345678","title":"Test Shoe","brand":"Nike"}]}`))
	})

	result, err := svc.Lookup(context.Background(), "123-456-78", uuid.New())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if gotCode != "12345678" {
		t.Errorf("API received code %q, expected cleaned 12345678", gotCode)
	}
	if !result.Success {
		t.Error("expected a successful lookup")
	}
}

func TestLookupNotConfigured(t *testing.T) {
	svc := NewService(config.BarcodeConfig{}, nil, nil)
	if _, err := svc.Lookup(context.Background(), "12345678", uuid.New()); err != ErrNotConfigured {
		t.Errorf("error = %v, expected ErrNotConfigured", err)
	}
}

func TestLookupNotFound(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	result, err := svc.Lookup(context.Background(), "0000000000", uuid.New())
	if err != nil {
		t.Fatalf("not-found should not be an error, got %v", err)
	}
	if result.Success {
		t.Error("expected Success false for a missing product")
	}
	if result.Message == "" {
		t.Error("expected an explanatory message")
	}
	if result.Item != nil {
		t.Error("expected no item draft for a missing product")
	}
}

func TestLookupMapsProduct(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[{
			"barcode_number": "0885176912345",
			"title": "Nike Air Max 90 Style ID: CD0881-100",
			"brand": "Nike",
			"color": "White",
			"size": "10.5",
			"lowest_price": 129.99,
			"images": ["https://images.example.com/airmax.jpg"]
		}]}`))
	})

	userID := uuid.New()
	result, err := svc.Lookup(context.Background(), "0885176912345", userID)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got message %q", result.Message)
	}

	item := result.Item
	if item.UserID != userID {
		t.Error("item not scoped to the requesting user")
	}
	if item.Name != "Nike Air Max 90 Style ID: CD0881-100" {
		t.Errorf("name = %q", item.Name)
	}
	if item.Brand != "Nike" || item.Color != "White" || item.Size != "10.5" {
		t.Errorf("brand/color/size = %q/%q/%q", item.Brand, item.Color, item.Size)
	}
	if item.StyleID != "CD0881-100" {
		t.Errorf("style id = %q, expected extraction from title", item.StyleID)
	}
	if item.RetailValue != 129.99 || item.Value != 129.99 {
		t.Errorf("retail/value = %v/%v, expected both 129.99", item.RetailValue, item.Value)
	}
	if item.Quantity != 1 {
		t.Errorf("quantity = %d, expected 1", item.Quantity)
	}
	if item.Barcode != "0885176912345" {
		t.Errorf("barcode = %q", item.Barcode)
	}
	if item.Source != models.SourceBarcode {
		t.Errorf("source = %q, expected %q", item.Source, models.SourceBarcode)
	}
	if item.ImageURL != "https://images.example.com/airmax.jpg" {
		t.Errorf("image url = %q", item.ImageURL)
	}
}

func TestLookupPrefersModelOverTitleExtraction(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[{
			"title": "Dunk Low Style: WRONG-123",
			"brand": "Nike",
			"model": "DD1391-100"
		}]}`))
	})

	result, err := svc.Lookup(context.Background(), "12345678", uuid.New())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result.Item.StyleID != "DD1391-100" {
		t.Errorf("style id = %q, expected the model field to win", result.Item.StyleID)
	}
}

type recordingRehoster struct {
	calls int
	url   string
	key   string
	ok    bool
}

func (r *recordingRehoster) RehostImage(ctx context.Context, rawURL string, userID uuid.UUID) (string, string, bool) {
	r.calls++
	return r.url, r.key, r.ok
}

func TestLookupRehostsImage(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[{"title":"Shoe","images":["https://third.party/shoe.jpg"]}]}`))
	})

	rehoster := &recordingRehoster{url: "https://bucket/users/x/rehosted/1.jpg", key: "users/x/rehosted/1.jpg", ok: true}
	svc.rehoster = rehoster

	result, err := svc.Lookup(context.Background(), "12345678", uuid.New())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if rehoster.calls != 1 {
		t.Fatalf("rehoster called %d times, expected 1", rehoster.calls)
	}
	if result.Item.ImageURL != rehoster.url || result.Item.ImageKey != rehoster.key {
		t.Errorf("image url/key = %q/%q, expected rehosted values", result.Item.ImageURL, result.Item.ImageKey)
	}
}

func TestLookupKeepsOriginalURLWhenRehostFails(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[{"title":"Shoe","images":["https://third.party/shoe.jpg"]}]}`))
	})
	svc.rehoster = &recordingRehoster{ok: false}

	result, err := svc.Lookup(context.Background(), "12345678", uuid.New())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result.Item.ImageURL != "https://third.party/shoe.jpg" {
		t.Errorf("image url = %q, expected the original third-party URL", result.Item.ImageURL)
	}
	if result.Item.ImageKey != "" {
		t.Errorf("image key = %q, expected empty", result.Item.ImageKey)
	}
}

func TestLookupServesSecondHitFromCache(t *testing.T) {
	apiCalls := 0
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		w.Write([]byte(`{"products":[{"title":"Cached Shoe","brand":"Adidas"}]}`))
	})
	svc.cache = cache.NewMemoryCache()

	for i := 0; i < 2; i++ {
		result, err := svc.Lookup(context.Background(), "12345678", uuid.New())
		if err != nil {
			t.Fatalf("Lookup %d failed: %v", i, err)
		}
		if result.Item.Name != "Cached Shoe" {
			t.Errorf("Lookup %d name = %q", i, result.Item.Name)
		}
	}
	if apiCalls != 1 {
		t.Errorf("API called %d times, expected the second hit to come from cache", apiCalls)
	}
}
