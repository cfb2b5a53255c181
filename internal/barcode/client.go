package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the external barcode/product database
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new barcode API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// apiResponse is the product database's lookup response shape
type apiResponse struct {
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Products []apiItem `json:"products"`
}

// apiItem is one product entry as returned by the external database
type apiItem struct {
	BarcodeNumber string   `json:"barcode_number"`
	Title         string   `json:"title"`
	Brand         string   `json:"brand"`
	Model         string   `json:"model"`
	MPN           string   `json:"mpn"`
	Color         string   `json:"color"`
	Size          string   `json:"size"`
	LowestPrice   float64  `json:"lowest_price"`
	Images        []string `json:"images"`
}

// lookup queries the product database for a cleaned barcode. A non-success
// item status produces (nil, message, nil): not found is not an error.
func (c *Client) lookup(ctx context.Context, code string) (*apiItem, string, error) {
	endpoint := fmt.Sprintf("%s?barcode=%s&key=%s", c.baseURL, url.QueryEscape(code), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("barcode lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	// The API reports per-item status in the body; 404 is its not-found shape
	if resp.StatusCode == http.StatusNotFound {
		return nil, "no product found for this barcode", nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("barcode lookup returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read lookup response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, "", fmt.Errorf("failed to decode lookup response: %w", err)
	}

	if parsed.Code != "" && parsed.Code != "OK" {
		message := parsed.Message
		if message == "" {
			message = "no product found for this barcode"
		}
		return nil, message, nil
	}
	if len(parsed.Products) == 0 {
		return nil, "no product found for this barcode", nil
	}

	return &parsed.Products[0], "", nil
}
