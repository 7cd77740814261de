package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyulbade/quota-settlement/internal/dto"
	"github.com/anyulbade/quota-settlement/internal/fx"
	"github.com/anyulbade/quota-settlement/internal/model"
	"github.com/anyulbade/quota-settlement/internal/render"
	"github.com/anyulbade/quota-settlement/internal/repository"
	"github.com/anyulbade/quota-settlement/internal/service"
	"github.com/anyulbade/quota-settlement/internal/settlement"
)

type fakeSettlements struct {
	lastFormat render.Format
	err        error
}

func (f *fakeSettlements) GenerateSettlementReport(_ context.Context, key string, format render.Format) (*service.Report, error) {
	f.lastFormat = format
	if f.err != nil {
		return nil, f.err
	}
	if key != "2024-I" {
		return nil, fmt.Errorf("%w: %s", service.ErrPeriodNotFound, key)
	}
	return &service.Report{
		Data:        []byte("%PDF-1.7 fake"),
		ContentType: "application/pdf",
		Filename:    service.Filename(key, string(format)),
		Pages:       3,
	}, nil
}

func (f *fakeSettlements) Summary(_ context.Context, key string) (*service.Summary, error) {
	if key != "2024-I" {
		return nil, fmt.Errorf("%w: %s", service.ErrPeriodNotFound, key)
	}
	res := &settlement.Result{Period: model.SettlementPeriod{Key: key}}
	return &service.Summary{Result: res, FallbackDates: []fx.Date{}, RateLookups: 4}, nil
}

type fakePeriods struct {
	rows []repository.PeriodRow
	err  error
}

func (f *fakePeriods) List(_ context.Context, companyID string, limit, offset int) ([]repository.PeriodRow, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var out []repository.PeriodRow
	for _, r := range f.rows {
		if companyID == "" || r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	return out[offset:min(offset+limit, len(out))], total, nil
}

func newTestRouter(s *fakeSettlements, p *fakePeriods) http.Handler {
	return NewRouter(NewHealthHandler(nil), NewSettlementHandler(s), NewPeriodHandler(p))
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	h.ServeHTTP(w, req)
	return w
}

func TestSettlementHandler_GetReport(t *testing.T) {
	svc := &fakeSettlements{}
	router := newTestRouter(svc, &fakePeriods{})

	t.Run("pdf by default", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlements/2024-I/report")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, render.FormatPDF, svc.lastFormat)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="settlement-2024-I.pdf"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "3", w.Header().Get("X-Report-Pages"))
		assert.Equal(t, "%PDF-1.7 fake", w.Body.String())
	})

	t.Run("xlsx", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlements/2024-I/report?format=xlsx")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, render.FormatXLSX, svc.lastFormat)
	})

	t.Run("unknown format", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlements/2024-I/report?format=docx")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown period", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlements/2030-I/report")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "settlement period not found")
	})

	t.Run("data failure", func(t *testing.T) {
		failing := newTestRouter(&fakeSettlements{err: errors.New("connection reset")}, &fakePeriods{})
		w := get(t, failing, "/api/v1/settlements/2024-I/report")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}

func TestSettlementHandler_GetSummary(t *testing.T) {
	router := newTestRouter(&fakeSettlements{}, &fakePeriods{})

	w := get(t, router, "/api/v1/settlements/2024-I/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "totals")
	assert.Contains(t, resp, "progress")
	assert.Equal(t, float64(4), resp["rate_lookups"])

	w = get(t, router, "/api/v1/settlements/nope/summary")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPeriodHandler_List(t *testing.T) {
	periods := &fakePeriods{rows: []repository.PeriodRow{
		{Key: "2024-I", CompanyID: "c1", CompanyName: "Pesquera Norte SAC"},
		{Key: "2023-II", CompanyID: "c1", CompanyName: "Pesquera Norte SAC"},
		{Key: "2024-I-S", CompanyID: "c2", CompanyName: "Austral"},
	}}
	router := newTestRouter(&fakeSettlements{}, periods)

	w := get(t, router, "/api/v1/settlement-periods?page_size=2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Paged[dto.PeriodResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 3, resp.Pagination.TotalItems)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.Equal(t, "/api/v1/settlements/2024-I/report", resp.Data[0].ReportURL)

	w = get(t, router, "/api/v1/settlement-periods?company=c2")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Austral", resp.Data[0].CompanyName)

	w = get(t, router, "/api/v1/settlement-periods?page=9")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)

	failing := newTestRouter(&fakeSettlements{}, &fakePeriods{err: errors.New("boom")})
	w = get(t, failing, "/api/v1/settlement-periods")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
