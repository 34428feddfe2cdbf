package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fnev4/fnev4/internal/application/service"
)

// ListClientsRequest represents query parameters for listing clients
type ListClientsRequest struct {
	ListRequest
	IncludeInactive bool `form:"include_inactive"`
}

// ListClients handles GET /api/clients
func (h *Handlers) ListClients(c *gin.Context) {
	var req ListClientsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	clients, err := h.services.Client.List(c.Request.Context(), req.Limit, req.Offset, req.IncludeInactive)
	if err != nil {
		h.writeError(c, "Failed to list clients", err)
		return
	}

	h.ok(c, clients)
}

// GetClient handles GET /api/clients/:code
func (h *Handlers) GetClient(c *gin.Context) {
	client, err := h.services.Client.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, "Failed to get client", err)
		return
	}

	h.ok(c, client)
}

// CreateClient handles POST /api/clients
func (h *Handlers) CreateClient(c *gin.Context) {
	var in service.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.services.Client.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "Failed to create client", err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    client,
	})
}

// UpdateClient handles PUT /api/clients/:code
func (h *Handlers) UpdateClient(c *gin.Context) {
	var in service.ClientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.services.Client.Update(c.Request.Context(), c.Param("code"), in)
	if err != nil {
		h.writeError(c, "Failed to update client", err)
		return
	}

	h.ok(c, client)
}

// DeactivateClient handles DELETE /api/clients/:code
func (h *Handlers) DeactivateClient(c *gin.Context) {
	code := c.Param("code")
	if err := h.services.Client.Deactivate(c.Request.Context(), code); err != nil {
		h.writeError(c, "Failed to deactivate client", err)
		return
	}

	h.logger.Info("Client deactivated", "code", code)
	h.ok(c, gin.H{"code": code})
}
