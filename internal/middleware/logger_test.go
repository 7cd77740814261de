package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestLogger_NotFound(t *testing.T) {
	buf := captureLog(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Logger())
	router.GET("/api/v1/settlements/:periodKey/summary", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "settlement period not found"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/settlements/2030-I/summary", nil)
	router.ServeHTTP(w, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "2030-I", entry["period"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
	assert.Equal(t, "/api/v1/settlements/:periodKey/summary", entry["route"])
	assert.Equal(t, "request", entry["message"])
	assert.NotContains(t, entry, "pages")
}

func TestLogger_ReportDownload(t *testing.T) {
	buf := captureLog(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Logger())
	router.GET("/api/v1/settlements/:periodKey/report", func(c *gin.Context) {
		c.Header("X-Report-Pages", "4")
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-"))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/settlements/2024-I/report?format=pdf", nil)
	router.ServeHTTP(w, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "pdf", entry["format"])
	assert.Equal(t, float64(4), entry["pages"])
	assert.Equal(t, "application/pdf", entry["content_type"])
	assert.Equal(t, float64(5), entry["bytes"])
}
