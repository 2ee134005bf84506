package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twoechelon/alns-solver/pkg/errors"
)

func TestErrorHandler_TranslatesAbortWithErrorToJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(nil))
	r.GET("/run/:id", func(c *gin.Context) {
		AbortWithNotFound(c, "optimization run")
	})

	req := httptest.NewRequest(http.MethodGet, "/run/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestErrorHandler_AddsHintForInfeasibleInstance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(nil))
	r.GET("/solve", func(c *gin.Context) {
		AbortWithError(c, errors.NewUnprocessableEntityError("instance X has no feasible solution"))
	})

	req := httptest.NewRequest(http.MethodGet, "/solve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "\"hint\"")
}

func TestRecoveryHandler_RecoversPanicAsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryHandler(nil))
	r.GET("/boom", func(c *gin.Context) {
		panic("destroy operator index out of range")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
