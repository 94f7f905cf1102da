package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/memebazaar/internal/api/middleware"
	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/logger"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
		wantLogged bool
	}{
		{"validation", domain.NewValidationError("title is required"), http.StatusBadRequest, "title is required", false},
		{"not found", domain.NewNotFoundError("Meme not found", nil), http.StatusNotFound, "Meme not found", false},
		{"store", domain.NewStoreError("failed to list memes", errors.New("db down")), http.StatusInternalServerError, "Failed to list memes", true},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Failed to list memes", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.New(&logger.EnvConfig{Level: "error", Format: "json", Output: &buf, ServiceName: "test"})

			r := gin.New()
			r.Use(middleware.LoggerMiddleware(log))
			r.GET("/memes", func(c *gin.Context) {
				respondError(c, tt.err, "list memes")
			})

			req := httptest.NewRequest(http.MethodGet, "/memes", nil)
			req.Header.Set(middleware.RequestIDHeader, "req-42")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["error"])

			if !tt.wantLogged {
				assert.NotContains(t, buf.String(), "Failed to list memes")
				return
			}
			// The error line carries the request-scoped fields.
			var entry map[string]interface{}
			line := strings.SplitN(strings.TrimSpace(buf.String()), "\n", 2)[0]
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			assert.Equal(t, "Failed to list memes", entry["message"])
			assert.Equal(t, "req-42", entry[logger.FieldRequestID])
		})
	}
}
