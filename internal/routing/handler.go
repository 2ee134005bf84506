package routing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/twoechelon/alns-solver/internal/common/middleware"
	apperrors "github.com/twoechelon/alns-solver/pkg/errors"
)

// Handler handles routing HTTP requests.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new routing handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// SuccessResponse represents a success response.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// Solve godoc
// @Summary Solve a 2E-CVRP instance
// @Description Run the ALNS engine against an instance file and persist the result
// @Tags routing
// @Accept json
// @Produce json
// @Param request body SolveRequest true "Solve request"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/routing/solve [post]
func (h *Handler) Solve(c *gin.Context) {
	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBadRequest(c, "invalid request data")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		middleware.AbortWithValidation(c, err.Error())
		return
	}

	result, err := h.service.Solve(c.Request.Context(), req)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			middleware.AbortWithError(c, appErr)
		} else {
			middleware.AbortWithInternal(c, "failed to solve instance", err)
		}
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    result,
	})
}

// GetRun godoc
// @Summary Fetch a persisted optimization run
// @Tags routing
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/routing/runs/{id} [get]
func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")

	if h.service.repo == nil {
		middleware.AbortWithNotFound(c, "optimization run")
		return
	}

	run, err := h.service.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		middleware.AbortWithNotFound(c, "optimization run")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    run,
	})
}

// SetupRoutes registers routing endpoints on the given group. respCache
// may be nil, in which case GetRun is served uncached: a persisted
// optimization run never changes after Solve writes it, so caching its
// lookup is safe whenever a cache is configured.
func SetupRoutes(rg *gin.RouterGroup, handler *Handler, respCache *middleware.CacheMiddleware) {
	routes := rg.Group("/routing")
	{
		routes.POST("/solve", handler.Solve)
		if respCache != nil {
			routes.GET("/runs/:id", respCache.CacheLong(), handler.GetRun)
		} else {
			routes.GET("/runs/:id", handler.GetRun)
		}
	}
}
