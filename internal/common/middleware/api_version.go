package middleware

import (
	"github.com/gin-gonic/gin"
)

// APIVersionConfig holds the solver API's version and the engine
// version this deployment runs. A solve request may pin
// X-ALNS-Engine-Version to guard against silently running on a
// different destroy/repair operator catalogue than the caller tuned
// its parameters against.
type APIVersionConfig struct {
	Version       string
	EngineVersion string
	Deprecated    bool
}

// DefaultAPIVersionConfig returns default API version configuration
func DefaultAPIVersionConfig() *APIVersionConfig {
	return &APIVersionConfig{
		Version:       "1.0.0",
		EngineVersion: "1.0.0",
		Deprecated:    false,
	}
}

// APIVersionMiddleware stamps every response with the solver API's
// version and the ALNS engine version it runs, and rejects a request
// that pins an X-ALNS-Engine-Version other than the one this
// deployment serves rather than silently solving with a different
// operator catalogue than the caller expects.
func APIVersionMiddleware(config *APIVersionConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultAPIVersionConfig()
	}

	return func(c *gin.Context) {
		c.Header("X-API-Version", config.Version)
		c.Header("X-ALNS-Engine-Version", config.EngineVersion)

		if config.Deprecated {
			c.Header("X-API-Deprecated", "true")
			c.Header("X-API-Deprecation-Info", "This solver API version is deprecated; its operator catalogue may be removed in a future release.")
		}

		if pinned := c.GetHeader("X-ALNS-Engine-Version"); pinned != "" && pinned != config.EngineVersion {
			AbortWithBadRequest(c, "requested engine version "+pinned+" is not served by this deployment (runs "+config.EngineVersion+")")
			return
		}

		c.Next()
	}
}

