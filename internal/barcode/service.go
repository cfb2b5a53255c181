package barcode

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"vaulted/internal/cache"
	"vaulted/internal/config"
	"vaulted/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidBarcode indicates the cleaned code is too short to be a
	// real UPC/EAN
	ErrInvalidBarcode = fmt.Errorf("barcode must have at least 8 digits")

	// ErrNotConfigured indicates no product database API key is present
	ErrNotConfigured = fmt.Errorf("barcode lookup is not configured")
)

// minBarcodeLength is the shortest valid code after cleaning (EAN-8)
const minBarcodeLength = 8

// styleIDPatterns extract a manufacturer style code from a product title,
// tried in order of specificity.
var styleIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)style\s*id[:\s]+([A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?i)style[:\s]+([A-Za-z0-9-]+)`),
	regexp.MustCompile(`(?i)sku[:\s]+([A-Za-z0-9-]+)`),
}

// Rehoster copies a third-party image into owned object storage. The bool
// result reports success; on failure the caller keeps the original URL.
type Rehoster interface {
	RehostImage(ctx context.Context, rawURL string, userID uuid.UUID) (url, key string, ok bool)
}

// LookupResult is the outcome of a barcode lookup. Success false with a
// Message means the database had no match, which is a normal answer rather
// than an error.
type LookupResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Item    *models.Item `json:"item,omitempty"`
}

// Service resolves barcodes into pre-filled item drafts
type Service struct {
	client   *Client
	cache    cache.Cache
	rehoster Rehoster
	cacheTTL time.Duration
}

// NewService creates a new barcode lookup service. client may be nil when no
// API key is configured; lookups then fail with ErrNotConfigured. cache and
// rehoster are optional.
func NewService(cfg config.BarcodeConfig, lookupCache cache.Cache, rehoster Rehoster) *Service {
	svc := &Service{
		cache:    lookupCache,
		rehoster: rehoster,
		cacheTTL: cfg.CacheTTL,
	}
	if cfg.APIKey != "" {
		svc.client = NewClient(cfg.BaseURL, cfg.APIKey)
	}
	return svc
}

// Clean strips whitespace and dashes from a scanned code. Scanner output and
// printed UPCs routinely carry both.
func Clean(code string) string {
	var b strings.Builder
	for _, r := range code {
		switch r {
		case ' ', '\t', '\n', '\r', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Lookup resolves a barcode into an item draft for the given user. The draft
// is not persisted; the client reviews it before saving.
func (s *Service) Lookup(ctx context.Context, rawCode string, userID uuid.UUID) (*LookupResult, error) {
	code := Clean(rawCode)
	if len(code) < minBarcodeLength {
		return nil, ErrInvalidBarcode
	}
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	if cached := s.fromCache(ctx, code); cached != nil {
		return s.finalize(ctx, cached, userID), nil
	}

	product, message, err := s.client.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return &LookupResult{Success: false, Message: message}, nil
	}

	s.toCache(ctx, code, product)
	return s.finalize(ctx, product, userID), nil
}

// finalize maps the product entry onto an item draft owned by userID
func (s *Service) finalize(ctx context.Context, product *apiItem, userID uuid.UUID) *LookupResult {
	item := s.mapProduct(product, userID)
	s.rehostImage(ctx, item, userID)
	return &LookupResult{Success: true, Item: item}
}

func (s *Service) mapProduct(product *apiItem, userID uuid.UUID) *models.Item {
	item := &models.Item{
		UserID:      userID,
		Name:        strings.TrimSpace(product.Title),
		Brand:       strings.TrimSpace(product.Brand),
		Color:       strings.TrimSpace(product.Color),
		Size:        strings.TrimSpace(product.Size),
		Quantity:    1,
		RetailValue: product.LowestPrice,
		Value:       product.LowestPrice,
		Barcode:     product.BarcodeNumber,
		Source:      models.SourceBarcode,
	}

	item.StyleID = strings.TrimSpace(product.Model)
	if item.StyleID == "" {
		item.StyleID = strings.TrimSpace(product.MPN)
	}
	if item.StyleID == "" {
		item.StyleID = extractStyleID(product.Title)
	}

	if len(product.Images) > 0 {
		item.ImageURL = product.Images[0]
	}
	return item
}

// rehostImage copies the product image into owned storage. On any failure
// the item keeps the third-party URL.
func (s *Service) rehostImage(ctx context.Context, item *models.Item, userID uuid.UUID) {
	if s.rehoster == nil || item.ImageURL == "" {
		return
	}
	url, key, ok := s.rehoster.RehostImage(ctx, item.ImageURL, userID)
	if !ok {
		log.Warn().Str("user_id", userID.String()).Str("url", item.ImageURL).Msg("Keeping third-party image URL, rehost failed")
		return
	}
	item.ImageURL = url
	item.ImageKey = key
}

// extractStyleID pulls a style code out of a free-text product title
func extractStyleID(title string) string {
	for _, pattern := range styleIDPatterns {
		if match := pattern.FindStringSubmatch(title); len(match) == 2 {
			return match[1]
		}
	}
	return ""
}

func (s *Service) fromCache(ctx context.Context, code string) *apiItem {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, "barcode:"+code)
	if err != nil {
		if err != cache.ErrCacheMiss {
			log.Warn().Err(err).Str("code", code).Msg("Barcode cache read failed")
		}
		return nil
	}
	var product apiItem
	if err := json.Unmarshal(data, &product); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("Discarding corrupt barcode cache entry")
		_ = s.cache.Delete(ctx, "barcode:"+code)
		return nil
	}
	return &product
}

func (s *Service) toCache(ctx context.Context, code string, product *apiItem) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, "barcode:"+code, data, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("code", code).Msg("Barcode cache write failed")
	}
}
