package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/quota-settlement/internal/render"
	"github.com/anyulbade/quota-settlement/internal/service"
)

type SettlementService interface {
	GenerateSettlementReport(ctx context.Context, periodKey string, format render.Format) (*service.Report, error)
	Summary(ctx context.Context, periodKey string) (*service.Summary, error)
}

type SettlementHandler struct {
	svc SettlementService
}

func NewSettlementHandler(svc SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

// GetReport streams the rendered settlement as an attachment. The format
// query parameter selects pdf (default) or xlsx.
func (h *SettlementHandler) GetReport(c *gin.Context) {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.svc.GenerateSettlementReport(c.Request.Context(), c.Param("periodKey"), format)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	c.Header("X-Report-Pages", strconv.Itoa(rep.Pages))
	c.Data(http.StatusOK, rep.ContentType, rep.Data)
}

func (h *SettlementHandler) GetSummary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context(), c.Param("periodKey"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
