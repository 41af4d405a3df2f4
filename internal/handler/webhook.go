package handler

import (
	"errors"
	"net/http"
	"strings"

	"tradehook/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Webhook handles one inbound trading signal. A notification failure after
// a successful order never downgrades the response: the caller's concern is
// order execution, not delivery confirmation.
func (h *Handler) Webhook(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.webhook")
	defer span.End()

	tenantID := c.Param("id")
	span.SetAttributes(attribute.String("tenant", tenantID))

	if !strings.Contains(c.ContentType(), "application/json") {
		verr := &domain.ValidationError{Kind: domain.ValidationBadContentType}
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": verr.Error()})
		return
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		verr := &domain.ValidationError{Kind: domain.ValidationMalformedPayload}
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": verr.Error()})
		return
	}

	result, err := h.webhookService.Process(ctx, tenantID, payload)
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrTenantNotFound):
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "unknown tenant id"})
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": verr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "failed to execute order"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "order": result.Order})
}
