package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/application/service"
	"github.com/sousbill/sousbill/internal/domain/entity"
	"github.com/sousbill/sousbill/internal/invoice"
	"github.com/sousbill/sousbill/internal/report"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	extractionService service.ExtractionService
	ingestService     service.IngestService
	historyService    service.HistoryService
	analyticsService  service.AnalyticsService
	maxUploadBytes    int64
	logger            *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	extractionService service.ExtractionService,
	ingestService service.IngestService,
	historyService service.HistoryService,
	analyticsService service.AnalyticsService,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		extractionService: extractionService,
		ingestService:     ingestService,
		historyService:    historyService,
		analyticsService:  analyticsService,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SaveInvoiceResponse represents the result of saving an invoice
type SaveInvoiceResponse struct {
	InvoiceID int64               `json:"invoice_id"`
	Alerts    []entity.PriceAlert `json:"alerts"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// AnalyzeInvoice handles POST /api/invoices/analyze. It accepts a multipart
// upload, runs the document through the extraction model and returns the
// normalized draft for the client to review. Nothing is persisted yet.
func (h *Handlers) AnalyzeInvoice(c *gin.Context) {
	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "missing document upload",
		})
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, Response{
			Success: false,
			Error:   fmt.Sprintf("document exceeds %d bytes", h.maxUploadBytes),
		})
		return
	}

	mimeType, err := documentMIMEType(fileHeader.Header.Get("Content-Type"), fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to read upload",
		})
		return
	}
	defer file.Close()

	document, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to read upload",
		})
		return
	}

	draft, err := h.extractionService.Analyze(c.Request.Context(), document, mimeType, fileHeader.Filename)
	if err != nil {
		var extractionErr *invoice.ExtractionError
		if errors.As(err, &extractionErr) {
			c.JSON(http.StatusUnprocessableEntity, Response{
				Success: false,
				Error:   extractionErr.Message,
			})
			return
		}
		h.logger.Error("Analysis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, Response{
			Success: false,
			Error:   "document analysis failed",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    draft,
	})
}

// SaveInvoice handles POST /api/invoices. The body is the (possibly
// client-edited) draft from a previous analyze call.
func (h *Handlers) SaveInvoice(c *gin.Context) {
	var draft entity.ExtractedInvoice
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	if err := sanitizeDraft(&draft); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	userID, userEmail := currentUser(c)
	invoiceID, alerts, err := h.ingestService.Ingest(c.Request.Context(), userID, userEmail, &draft)
	if err != nil {
		h.logger.Error("Failed to save invoice", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "could not save invoice",
		})
		return
	}

	if alerts == nil {
		alerts = []entity.PriceAlert{}
	}
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data: SaveInvoiceResponse{
			InvoiceID: invoiceID,
			Alerts:    alerts,
		},
	})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	userID, _ := currentUser(c)

	invoices, err := h.historyService.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list invoices", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve invoices",
		})
		return
	}

	if invoices == nil {
		invoices = []*entity.Invoice{}
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    invoices,
	})
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}
	userID, _ := currentUser(c)

	inv, err := h.historyService.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.respondHistoryError(c, "Failed to get invoice", id, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    inv,
	})
}

// UpdateInvoiceRequest represents the editable header fields
type UpdateInvoiceRequest struct {
	Vendor      string  `json:"vendor"`
	Date        string  `json:"date"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
}

// UpdateInvoice handles PUT /api/invoices/:id
func (h *Handlers) UpdateInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}
	if req.TotalAmount < 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "total_amount must not be negative",
		})
		return
	}

	userID, _ := currentUser(c)
	inv := &entity.Invoice{
		ID:          id,
		Vendor:      req.Vendor,
		Date:        req.Date,
		TotalAmount: req.TotalAmount,
		Currency:    req.Currency,
	}
	if err := h.historyService.UpdateHeader(c.Request.Context(), userID, inv); err != nil {
		h.respondHistoryError(c, "Failed to update invoice", id, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// DeleteInvoice handles DELETE /api/invoices/:id
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}
	userID, _ := currentUser(c)

	if err := h.historyService.Delete(c.Request.Context(), userID, id); err != nil {
		h.respondHistoryError(c, "Failed to delete invoice", id, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportInvoices handles GET /api/invoices/export
func (h *Handlers) ExportInvoices(c *gin.Context) {
	userID, _ := currentUser(c)

	invoices, err := h.historyService.ListWithItems(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load invoices for export", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export invoices",
		})
		return
	}

	workbook, err := report.BuildInvoiceWorkbook(invoices)
	if err != nil {
		h.logger.Error("Failed to build export workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export invoices",
		})
		return
	}

	filename := fmt.Sprintf("invoices_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		workbook)
}

// SpendSummary handles GET /api/analytics/summary
func (h *Handlers) SpendSummary(c *gin.Context) {
	userID, _ := currentUser(c)

	summary, err := h.analyticsService.SpendSummary(c.Request.Context(), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.logger.Error("Failed to compute spend summary", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to compute summary",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    summary,
	})
}

// ProductStats handles GET /api/analytics/products
func (h *Handlers) ProductStats(c *gin.Context) {
	userID, _ := currentUser(c)

	stats, err := h.analyticsService.ProductStats(c.Request.Context(), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.logger.Error("Failed to compute product stats", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to compute product stats",
		})
		return
	}

	if stats == nil {
		stats = []*entity.ProductStat{}
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    stats,
	})
}

// PriceHistory handles GET /api/analytics/price-history
func (h *Handlers) PriceHistory(c *gin.Context) {
	product := c.Query("product")
	if product == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "product query parameter is required",
		})
		return
	}
	userID, _ := currentUser(c)

	series, err := h.analyticsService.PriceSeries(c.Request.Context(), userID, product)
	if err != nil {
		h.logger.Error("Failed to load price history",
			zap.String("user_id", userID),
			zap.String("product", product),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to load price history",
		})
		return
	}

	if series == nil {
		series = []*entity.PricePoint{}
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    series,
	})
}

// invoiceID parses the :id path parameter, writing a 400 response on failure.
func (h *Handlers) invoiceID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid invoice ID",
		})
		return 0, false
	}
	return id, true
}

// respondHistoryError maps history service errors onto HTTP statuses.
func (h *Handlers) respondHistoryError(c *gin.Context, msg string, id int64, err error) {
	if errors.Is(err, service.ErrInvoiceNotFound) {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "invoice not found",
		})
		return
	}
	h.logger.Error(msg, zap.Int64("invoice_id", id), zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error:   "internal error",
	})
}

// sanitizeDraft re-applies the ingestion rules to a client-edited draft:
// numbers must not be negative, rows without a description are dropped and
// zero quantities fall back to one.
func sanitizeDraft(draft *entity.ExtractedInvoice) error {
	if draft.TotalAmount < 0 {
		return fmt.Errorf("total_amount must not be negative")
	}
	if draft.Currency == "" {
		draft.Currency = "EUR"
	}

	items := draft.Items[:0]
	for _, it := range draft.Items {
		if it == nil || strings.TrimSpace(it.Description) == "" {
			continue
		}
		if it.Quantity < 0 || it.UnitPrice < 0 || it.TotalPrice < 0 {
			return fmt.Errorf("item values must not be negative: %s", it.Description)
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		if it.TotalPrice == 0 {
			it.TotalPrice = it.Quantity * it.UnitPrice
		}
		items = append(items, it)
	}
	draft.Items = items

	return nil
}

// documentMIMEType resolves the MIME type of an upload, trusting the part
// header when it names a supported type and falling back to the filename
// extension.
func documentMIMEType(declared, filename string) (string, error) {
	supported := map[string]bool{
		"application/pdf": true,
		"image/jpeg":      true,
		"image/png":       true,
	}

	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if supported[declared] {
		return declared, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	}

	return "", fmt.Errorf("unsupported document type: only PDF, JPEG and PNG are accepted")
}
