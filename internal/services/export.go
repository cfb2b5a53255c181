package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vaulted/pkg/models"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName    = "Inventory"
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	thumbnailRowHeight = 60
)

// exportColumns is the fixed column schema of the exported workbook
var exportColumns = []string{"Name", "Size", "Color", "Quantity", "Release Date", "Brand", "Retail Value", "Image"}

var (
	// ErrNoItems indicates the user has nothing to export
	ErrNoItems = fmt.Errorf("no inventory items to export")

	// ErrEmailNotVerified indicates the caller has no verified address to
	// deliver the export to
	ErrEmailNotVerified = fmt.Errorf("a verified email address is required for export")
)

// ExportService builds inventory workbooks and emails them to their owner
type ExportService struct {
	email      *EmailService
	httpClient *http.Client
}

// NewExportService creates a new export service. email may be nil when the
// mail relay is unconfigured; ExportService reports that as a precondition
// failure at request time.
func NewExportService(email *EmailService) *ExportService {
	return &ExportService{
		email: email,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Export builds the workbook for the given items and emails it to the user.
// The items must already be scoped to the owner.
func (s *ExportService) Export(ctx context.Context, user *models.User, items []models.Item) error {
	if user.Email == "" || !user.EmailVerified {
		return ErrEmailNotVerified
	}
	if s.email == nil {
		return ErrMailNotConfigured
	}
	if len(items) == 0 {
		return ErrNoItems
	}

	workbook, err := s.BuildWorkbook(ctx, items)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}

	filename := fmt.Sprintf("vaulted-inventory-%s.xlsx", time.Now().Format("2006-01-02"))
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your Vaulted inventory export is attached (%d items).</p>",
		user.Name, len(items),
	)

	if err := s.email.SendWithAttachment(user.Email, "Your Vaulted inventory export", body, filename, xlsxContentType, workbook.Bytes()); err != nil {
		return fmt.Errorf("failed to email export: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Int("items", len(items)).Msg("Inventory export emailed")
	return nil
}

// BuildWorkbook renders all items into an xlsx workbook, one row per item,
// embedding a thumbnail for rows whose image could be fetched. A single
// image failure never aborts the export; the row keeps its other columns.
func (s *ExportService) BuildWorkbook(ctx context.Context, items []models.Item) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	for col, title := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheetName, cell, title); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(exportSheetName, "A", "H", 18); err != nil {
		return nil, err
	}

	for i, item := range items {
		row := i + 2
		values := []interface{}{
			item.Name,
			item.Size,
			item.Color,
			item.Quantity,
			item.ReleaseDate,
			item.Brand,
			fmt.Sprintf("$%.2f", item.RetailValue),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheetName, cell, v); err != nil {
				return nil, err
			}
		}

		s.embedThumbnail(ctx, f, item, row)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// embedThumbnail fetches the item's image and anchors it to the row. Only
// secure-transport URLs are attempted; any failure is logged per row and
// swallowed.
func (s *ExportService) embedThumbnail(ctx context.Context, f *excelize.File, item models.Item, row int) {
	if !strings.HasPrefix(item.ImageURL, "https://") {
		return
	}

	data, ext, err := s.fetchThumbnail(ctx, item.ImageURL)
	if err != nil {
		log.Warn().Err(err).Str("item_id", item.ID.String()).Int("row", row).Msg("Skipping image embed for export row")
		return
	}

	cell, err := excelize.CoordinatesToCellName(len(exportColumns), row)
	if err != nil {
		return
	}

	err = f.AddPictureFromBytes(exportSheetName, cell, &excelize.Picture{
		Extension: ext,
		File:      data,
		Format: &excelize.GraphicOptions{
			ScaleX:  0.3,
			ScaleY:  0.3,
			OffsetX: 4,
			OffsetY: 4,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("item_id", item.ID.String()).Int("row", row).Msg("Failed to embed image in export row")
		return
	}

	if err := f.SetRowHeight(exportSheetName, row, thumbnailRowHeight); err != nil {
		log.Warn().Err(err).Int("row", row).Msg("Failed to raise export row height")
	}
}

func (s *ExportService) fetchThumbnail(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxRehostedImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > MaxRehostedImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", MaxRehostedImageBytes)
	}

	ext := extensionForContentType(resp.Header.Get("Content-Type"))
	switch ext {
	case ".webp":
		// excelize cannot embed webp
		return nil, "", fmt.Errorf("unsupported image format webp")
	}
	return data, ext, nil
}
