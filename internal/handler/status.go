package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tradehook/internal/domain"

	"github.com/gin-gonic/gin"
)

// Status returns the tenant's balances and open orders.
func (h *Handler) Status(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.status")
	defer span.End()

	status, err := h.statusService.Status(ctx, c.Param("id"))
	if err != nil {
		h.statusError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SymbolBalance returns the single-asset balance snapshot for a symbol.
func (h *Handler) SymbolBalance(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.symbol-balance")
	defer span.End()

	balance, err := h.statusService.SymbolBalance(ctx, c.Param("id"), c.Param("symbol"))
	if err != nil {
		h.statusError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// Trades returns the most recent trades for a symbol, newest first.
func (h *Handler) Trades(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trades")
	defer span.End()

	limit := 0
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	trades, err := h.statusService.Trades(ctx, c.Param("id"), c.Param("symbol"), limit)
	if err != nil {
		h.statusError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

func (h *Handler) statusError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrTenantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "unknown tenant id"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
}
