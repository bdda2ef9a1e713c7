package restapi

import (
	"errors"
	"net/http"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIErrorResponse is the body of every 4xx/5xx answer.
type APIErrorResponse struct {
	Error string `json:"error"`
}

// PortfolioHandler обрабатывает HTTP запросы, связанные с портфелями.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	logger           *zap.Logger
}

// NewPortfolioHandler создает новый экземпляр PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		logger:           logger.Named("PortfolioHandler"),
	}
}

// GetPortfolioHandler serves GET /portfolio?wallet=<address>.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "wallet query parameter is required"})
		return
	}

	snapshot, err := h.portfolioService.GetPortfolio(c.Request.Context(), wallet)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidWallet) {
			c.JSON(http.StatusBadRequest, APIErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Failed to build portfolio snapshot",
			zap.String("wallet", wallet),
			zap.String("requestId", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: "failed to build portfolio"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// HealthHandler serves GET /healthz.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
