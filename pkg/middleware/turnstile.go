package middleware

import (
	"bitwise74/roleplay-api/pkg/apierr"
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const DefaultTurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type TurnstileConfig struct {
	Enabled   bool
	Secret    string
	VerifyURL string
	Client    *http.Client
}

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// NewTurnstileMiddleware checks the TurnstileToken header against
// Cloudflare's siteverify endpoint. It does nothing when disabled.
func NewTurnstileMiddleware(cfg TurnstileConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultTurnstileVerifyURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		token := c.GetHeader("TurnstileToken")
		if token == "" {
			apierr.Abort(c, apierr.BadRequest(http.StatusBadRequest, "Missing or invalid turnstile token"))
			return
		}

		payload, err := json.Marshal(gin.H{
			"secret":   cfg.Secret,
			"response": token,
			"remoteip": c.ClientIP(),
		})
		if err != nil {
			apierr.Internal(c, err, "Failed to encode turnstile payload")
			return
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, cfg.VerifyURL, bytes.NewReader(payload))
		if err != nil {
			apierr.Internal(c, err, "Failed to build turnstile request")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := cfg.Client.Do(req)
		if err != nil {
			zap.L().Warn("Turnstile verification failed", zap.Error(err), zap.String("requestID", requestID))
			apierr.Abort(c, apierr.Unauthorized("Unauthorized"))
			return
		}
		defer resp.Body.Close()

		var res turnstileResponse
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil || !res.Success {
			zap.L().Debug("Turnstile rejected token",
				zap.Strings("errorCodes", res.ErrorCodes),
				zap.String("requestID", requestID),
			)
			apierr.Abort(c, apierr.Unauthorized("Unauthorized"))
			return
		}

		c.Next()
	}
}
