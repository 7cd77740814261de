package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anyulbade/quota-settlement/internal/dto"
	"github.com/anyulbade/quota-settlement/internal/repository"
)

type PeriodLister interface {
	List(ctx context.Context, companyID string, limit, offset int) ([]repository.PeriodRow, int, error)
}

type PeriodHandler struct {
	svc PeriodLister
}

func NewPeriodHandler(svc PeriodLister) *PeriodHandler {
	return &PeriodHandler{svc: svc}
}

func (h *PeriodHandler) List(c *gin.Context) {
	p := dto.ParsePagination(c)

	rows, total, err := h.svc.List(c.Request.Context(), c.Query("company"), p.PageSize, p.Offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	items := make([]dto.PeriodResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.NewPeriodResponse(r))
	}
	c.JSON(http.StatusOK, dto.NewPaged(items, p, total))
}
