package consult

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/analyze", h.Analyze)
}

func (h *Handler) Analyze(c *gin.Context) {
	var payload Request
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.svc.Analyze(c.Request.Context(), payload)
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("analyze failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record consultation"})
		return
	}

	c.JSON(http.StatusOK, result)
}
