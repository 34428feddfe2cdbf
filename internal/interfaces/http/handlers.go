package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/application/service"
	"github.com/fnev4/fnev4/internal/domain/workflow"
	"github.com/fnev4/fnev4/internal/infrastructure/storage"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services      Services
	uploads       port.UploadStorage
	health        HealthChecker
	maxUploadSize int64
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	services Services,
	uploads port.UploadStorage,
	health HealthChecker,
	maxUploadSize int64,
	logger Logger,
) *Handlers {
	return &Handlers{
		services:      services,
		uploads:       uploads,
		health:        health,
		maxUploadSize: maxUploadSize,
		logger:        logger,
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
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// ListRequest represents paging query parameters
type ListRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ListInvoicesRequest represents query parameters for listing invoices
type ListInvoicesRequest struct {
	ListRequest
	Status     string `form:"status"`
	ClientCode string `form:"client_code"`
	SessionID  int64  `form:"session_id"`
}

// BatchCertifyRequest is the body of POST /api/invoices/certify
type BatchCertifyRequest struct {
	IDs []int64 `json:"ids"`
}

// PaymentMethodRequest is the body of PUT /api/invoices/:id/payment-method
type PaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// BatchCertifyResponse summarizes a batch certification
type BatchCertifyResponse struct {
	Total     int                            `json:"total"`
	Certified int                            `json:"certified"`
	Failed    int                            `json:"failed"`
	Results   []*service.CertificationResult `json:"results"`
}

// Version is reported by the health check
var Version = "dev"

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	status := http.StatusOK
	if h.health != nil {
		health := h.health.Health(c.Request.Context())
		response.Components = health.Components
		if !health.Overall {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Invalid query parameters", "error", err)
		h.fail(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	page, err := h.services.Invoice.List(c.Request.Context(), port.InvoiceFilter{
		Status:     req.Status,
		ClientCode: req.ClientCode,
		SessionID:  req.SessionID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		h.writeError(c, "Failed to list invoices", err)
		return
	}

	h.ok(c, page)
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.services.Invoice.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to get invoice", err)
		return
	}

	h.ok(c, invoice)
}

// DeleteInvoice handles DELETE /api/invoices/:id
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	if err := h.services.Invoice.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "Failed to delete invoice", err)
		return
	}

	h.logger.Info("Invoice deleted", "invoice_id", id)
	h.ok(c, gin.H{"id": id})
}

// CertifyInvoice handles POST /api/invoices/:id/certify. A rejected
// submission is still a 200: the result carries the DGI error.
func (h *Handlers) CertifyInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	result, err := h.services.Certification.Certify(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Certification failed", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: result.Success,
		Data:    result,
		Error:   result.Error,
	})
}

// CertifyBatch handles POST /api/invoices/certify
func (h *Handlers) CertifyBatch(c *gin.Context) {
	var req BatchCertifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		h.fail(c, http.StatusBadRequest, "ids must list at least one invoice")
		return
	}

	results := h.services.Certification.CertifyBatch(c.Request.Context(), req.IDs)

	response := BatchCertifyResponse{Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			response.Certified++
		} else {
			response.Failed++
		}
	}

	h.logger.Info("Batch certification finished",
		"total", response.Total,
		"certified", response.Certified,
		"failed", response.Failed,
	)
	h.ok(c, response)
}

// ResetInvoice handles POST /api/invoices/:id/reset
func (h *Handlers) ResetInvoice(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.services.Invoice.ResetToDraft(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to reset invoice", err)
		return
	}

	h.ok(c, invoice)
}

// UpdatePaymentMethod handles PUT /api/invoices/:id/payment-method
func (h *Handlers) UpdatePaymentMethod(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	invoice, err := h.services.Invoice.UpdatePaymentMethod(c.Request.Context(), id, req.PaymentMethod)
	if err != nil {
		h.writeError(c, "Failed to update payment method", err)
		return
	}

	h.ok(c, invoice)
}

// InvoiceLogs handles GET /api/invoices/:id/logs
func (h *Handlers) InvoiceLogs(c *gin.Context) {
	id, ok := h.invoiceID(c)
	if !ok {
		return
	}

	logs, err := h.services.Invoice.APILogs(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to list API logs", err)
		return
	}

	h.ok(c, logs)
}

// ListVatTypes handles GET /api/vat-types
func (h *Handlers) ListVatTypes(c *gin.Context) {
	vats, err := h.services.Client.VatTypes(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to list VAT types", err)
		return
	}

	h.ok(c, vats)
}

func (h *Handlers) invoiceID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logger.Warn("Invalid invoice ID", "id", idStr)
		h.fail(c, http.StatusBadRequest, "invalid invoice ID")
		return 0, false
	}
	return id, true
}

func (h *Handlers) ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func (h *Handlers) fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{
		Success: false,
		Error:   msg,
	})
}

// writeError maps service errors to HTTP status codes
func (h *Handlers) writeError(c *gin.Context, msg string, err error) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Data:    gin.H{"violations": validation.Violations},
			Error:   err.Error(),
		})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
		h.fail(c, status, "internal error")
		return
	}

	h.logger.Warn(msg, "error", err)
	h.fail(c, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound),
		errors.Is(err, service.ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyCertified),
		errors.Is(err, service.ErrClientExists),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrParentNotCertified):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidClient),
		errors.Is(err, service.ErrUnsupportedFormat),
		errors.Is(err, service.ErrFileNotFound),
		errors.Is(err, workflow.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
