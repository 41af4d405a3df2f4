package handler

import (
	"net/http"

	"tradehook/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer         trace.Tracer
	webhookService *service.WebhookService
	statusService  *service.StatusService
}

func New(
	tracer trace.Tracer,
	webhookService *service.WebhookService,
	statusService *service.StatusService,
) *Handler {
	return &Handler{
		tracer:         tracer,
		webhookService: webhookService,
		statusService:  statusService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"status": "error", "message": "method not allowed"})
	})

	r.GET("/", h.Home)
	r.GET("/health", h.Health)
	r.POST("/webhook/:id", h.Webhook)
	r.GET("/status/:id", h.Status)
	r.GET("/status/:id/:symbol", h.SymbolBalance)
	r.GET("/trades/:id/:symbol", h.Trades)
}

func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Multi-tenant trading webhook server is running!")
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
