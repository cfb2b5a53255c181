package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"vaulted/pkg/models"

	"github.com/xuri/excelize/v2"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestExportPreconditions(t *testing.T) {
	svc := NewExportService(nil)
	verified := &models.User{Email: "owner@example.com", EmailVerified: true}
	items := []models.Item{{Name: "Air Max 90"}}

	tests := []struct {
		name     string
		user     *models.User
		items    []models.Item
		expected error
	}{
		{"unverified email", &models.User{Email: "owner@example.com"}, items, ErrEmailNotVerified},
		{"missing email", &models.User{EmailVerified: true}, items, ErrEmailNotVerified},
		{"mail not configured", verified, items, ErrMailNotConfigured},
		{"mail check precedes item check", verified, nil, ErrMailNotConfigured},
	}

	for _, test := range tests {
		if err := svc.Export(context.Background(), test.user, test.items); err != test.expected {
			t.Errorf("%s: error = %v, expected %v", test.name, err, test.expected)
		}
	}
}

func TestExportEmptyInventory(t *testing.T) {
	svc := &ExportService{email: &EmailService{fromEmail: "noreply@example.com"}}
	user := &models.User{Email: "owner@example.com", EmailVerified: true}

	if err := svc.Export(context.Background(), user, nil); err != ErrNoItems {
		t.Errorf("error = %v, expected ErrNoItems", err)
	}
}

// A failing image must cost only its own thumbnail; every row's other
// columns survive.
func TestBuildWorkbookImageFailureDoesNotAbort(t *testing.T) {
	imageData := testPNG(t)
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(imageData)
	}))
	defer server.Close()

	svc := &ExportService{httpClient: server.Client()}
	items := []models.Item{
		{Name: "Air Max 90", Brand: "Nike", Size: "10.5", Color: "White", Quantity: 1, RetailValue: 150, ImageURL: server.URL + "/ok.png"},
		{Name: "Ultraboost", Brand: "Adidas", Size: "10.5", Color: "Black", Quantity: 2, ImageURL: server.URL + "/broken.png"},
		{Name: "Samba OG", Brand: "Adidas", Size: "9", Color: "Green", Quantity: 1, ImageURL: "http://insecure.example.com/samba.png"},
	}

	buf, err := svc.BuildWorkbook(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheetName)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != len(items)+1 {
		t.Fatalf("workbook has %d rows, expected %d items plus header", len(rows), len(items))
	}

	for col, title := range exportColumns {
		if col < len(rows[0]) && rows[0][col] != title {
			t.Errorf("header column %d = %q, expected %q", col, rows[0][col], title)
		}
	}

	for i, item := range items {
		row := rows[i+1]
		if row[0] != item.Name {
			t.Errorf("row %d name = %q, expected %q", i+1, row[0], item.Name)
		}
		if row[3] != strconv.Itoa(item.Quantity) {
			t.Errorf("row %d quantity = %q, expected %d", i+1, row[3], item.Quantity)
		}
		if row[5] != item.Brand {
			t.Errorf("row %d brand = %q, expected %q", i+1, row[5], item.Brand)
		}
	}

	pictures, err := f.GetPictures(exportSheetName, "H2")
	if err != nil {
		t.Fatalf("failed to read embedded pictures: %v", err)
	}
	if len(pictures) != 1 {
		t.Errorf("row with a healthy image has %d pictures, expected 1", len(pictures))
	}
}

// An image over the ceiling is skipped outright, never truncated and
// embedded as corrupt bytes.
func TestBuildWorkbookSkipsOversizedThumbnail(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(bytes.Repeat([]byte{0xAB}, MaxRehostedImageBytes+1))
	}))
	defer server.Close()

	svc := &ExportService{httpClient: server.Client()}
	items := []models.Item{
		{Name: "Air Max 90", Brand: "Nike", Quantity: 1, ImageURL: server.URL + "/huge.png"},
	}

	buf, err := svc.BuildWorkbook(context.Background(), items)
	if err != nil {
		t.Fatalf("BuildWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheetName)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("workbook has %d rows, expected header plus one item", len(rows))
	}
	if rows[1][0] != "Air Max 90" {
		t.Errorf("row name = %q, the row itself must survive the skipped embed", rows[1][0])
	}

	pictures, err := f.GetPictures(exportSheetName, "H2")
	if err != nil {
		t.Fatalf("failed to read embedded pictures: %v", err)
	}
	if len(pictures) != 0 {
		t.Errorf("oversized image row has %d pictures, expected none", len(pictures))
	}
}
