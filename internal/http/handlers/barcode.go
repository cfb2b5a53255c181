package handlers

import (
	"errors"
	"net/http"

	"vaulted/internal/barcode"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BarcodeHandler handles barcode-driven item ingestion
type BarcodeHandler struct {
	barcodeService *barcode.Service
}

// NewBarcodeHandler creates a new barcode handler
func NewBarcodeHandler(barcodeService *barcode.Service) *BarcodeHandler {
	return &BarcodeHandler{barcodeService: barcodeService}
}

// BarcodeLookupRequest carries a scanned or typed barcode
type BarcodeLookupRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

// Lookup resolves a barcode into a pre-filled item draft. A code the product
// database does not know returns success false, not an error status.
func (h *BarcodeHandler) Lookup(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid user identity"})
	}

	var req BarcodeLookupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := h.barcodeService.Lookup(c.Request().Context(), req.Barcode, userID)
	if err != nil {
		switch {
		case errors.Is(err, barcode.ErrInvalidBarcode):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, barcode.ErrNotConfigured):
			return c.JSON(http.StatusPreconditionFailed, map[string]string{"error": err.Error()})
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Barcode lookup failed")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Barcode lookup failed"})
		}
	}

	return c.JSON(http.StatusOK, result)
}
