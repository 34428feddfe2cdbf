package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ImportInvoices handles POST /api/imports/invoices. With ?dry_run=true
// the workbook is only validated.
func (h *Handlers) ImportInvoices(c *gin.Context) {
	path, dryRun, ok := h.receiveUpload(c)
	if !ok {
		return
	}
	if h.services.ParseCache != nil {
		defer h.services.ParseCache.Invalidate(path)
	}

	ctx := c.Request.Context()
	run := h.services.InvoiceImport.Import
	if dryRun {
		run = h.services.InvoiceImport.Preview
	}

	result, err := run(ctx, path)
	if err != nil {
		h.writeError(c, "Invoice import failed", err)
		return
	}

	h.logger.Info("Invoice workbook processed",
		"file", result.FileName,
		"dry_run", dryRun,
		"valid", len(result.Invoices),
		"errors", len(result.Errors),
	)
	h.ok(c, result)
}

// ImportClients handles POST /api/imports/clients
func (h *Handlers) ImportClients(c *gin.Context) {
	path, dryRun, ok := h.receiveUpload(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	run := h.services.ClientImport.Import
	if dryRun {
		run = h.services.ClientImport.Preview
	}

	result, err := run(ctx, path)
	if err != nil {
		h.writeError(c, "Client import failed", err)
		return
	}

	h.logger.Info("Client workbook processed",
		"file", result.FileName,
		"dry_run", dryRun,
		"valid", result.ValidRows,
		"errors", result.ErrorRows,
	)
	h.ok(c, result)
}

// ListImports handles GET /api/imports
func (h *Handlers) ListImports(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	sessions, err := h.services.Client.ListSessions(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, "Failed to list import sessions", err)
		return
	}

	h.ok(c, sessions)
}

// receiveUpload stores the multipart "file" field and returns its full path
func (h *Handlers) receiveUpload(c *gin.Context) (string, bool, bool) {
	dryRun, err := parseBool(c.Query("dry_run"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, "dry_run must be a boolean")
		return "", false, false
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.fail(c, http.StatusBadRequest, "multipart field \"file\" is required")
		return "", false, false
	}
	if header.Size > h.maxUploadSize {
		h.fail(c, http.StatusRequestEntityTooLarge, "uploaded file is too large")
		return "", false, false
	}

	file, err := header.Open()
	if err != nil {
		h.writeError(c, "Failed to open upload", err)
		return "", false, false
	}
	defer file.Close()

	rel, err := h.uploads.SaveUpload(c.Request.Context(), header.Filename, file, h.maxUploadSize)
	if err != nil {
		h.writeError(c, "Failed to store upload", err)
		return "", false, false
	}

	return h.uploads.GetFullPath(rel), dryRun, true
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// DownloadClientTemplate handles GET /api/clients/template
func (h *Handlers) DownloadClientTemplate(c *gin.Context) {
	dir, err := os.MkdirTemp("", "fnev4-template-")
	if err != nil {
		h.writeError(c, "Failed to create temp dir", err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "clients_template.xlsx")
	if err := h.services.ClientImport.ExportTemplate(c.Request.Context(), path); err != nil {
		h.writeError(c, "Failed to export client template", err)
		return
	}

	c.FileAttachment(path, "clients_template.xlsx")
}
