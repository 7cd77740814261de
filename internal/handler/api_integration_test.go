package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/anyulbade/quota-settlement/internal/database"
	"github.com/anyulbade/quota-settlement/internal/dto"
	"github.com/anyulbade/quota-settlement/internal/fx"
	"github.com/anyulbade/quota-settlement/internal/layout"
	"github.com/anyulbade/quota-settlement/internal/render"
	"github.com/anyulbade/quota-settlement/internal/render/pdf"
	"github.com/anyulbade/quota-settlement/internal/render/xlsx"
	"github.com/anyulbade/quota-settlement/internal/repository"
	"github.com/anyulbade/quota-settlement/internal/service"
)

// weekdayRates quotes every weekday, so weekend deductions walk back to Friday.
var weekdayRates = fx.ProviderFunc(func(_ context.Context, day fx.Date) (decimal.Decimal, bool, error) {
	switch day.Time().Weekday() {
	case 0, 6:
		return decimal.Zero, false, nil
	}
	return decimal.RequireFromString("3.712"), true, nil
})

func setupFullRouter(t *testing.T) http.Handler {
	t.Helper()
	pool := getTestPool(t)
	if pool == nil {
		t.Skip("no database available")
	}
	t.Cleanup(pool.Close)

	database.MigrationsDir = "file://../../migrations"
	t.Cleanup(func() { database.MigrationsDir = "file://migrations" })

	dbURL := getTestDBURL()
	_ = database.RollbackMigrations(dbURL)
	if err := database.RunMigrations(dbURL); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := database.SeedData(t.Context(), pool); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	engine, err := layout.NewEngine(layout.A4(), pdf.NewMetrics())
	require.NoError(t, err)
	backends := render.NewRegistry()
	backends.Register(render.FormatPDF, pdf.New())
	backends.Register(render.FormatXLSX, xlsx.New())

	settlements := repository.NewSettlementRepository(pool)
	reports := service.NewReportService(settlements, repository.NewLogoRepository(pool), weekdayRates, engine, backends)
	periods := service.NewPeriodService(settlements)

	return NewRouter(NewHealthHandler(pool), NewSettlementHandler(reports), NewPeriodHandler(periods))
}

func TestSettlementAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	router := setupFullRouter(t)

	t.Run("list periods", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlement-periods")
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.Paged[dto.PeriodResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, database.DemoPeriodKey, resp.Data[0].Key)
		assert.Equal(t, 10, resp.Data[0].Quotas)
	})

	t.Run("summary has no fallback days", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlements/"+database.DemoPeriodKey+"/summary")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			FallbackDates []string `json:"fallback_dates"`
			Totals        struct {
				LiquidationAmount decimal.Decimal `json:"liquidation_amount"`
				NetBalanceUSD     decimal.Decimal `json:"net_balance_usd"`
			} `json:"totals"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.FallbackDates)
		assert.True(t, resp.Totals.LiquidationAmount.IsPositive())
		assert.True(t, resp.Totals.NetBalanceUSD.LessThan(resp.Totals.LiquidationAmount))
	})

	t.Run("pdf report spans several pages", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlements/"+database.DemoPeriodKey+"/report")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pdf.ContentType, w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
		assert.NotEqual(t, "1", w.Header().Get("X-Report-Pages"))
	})

	t.Run("xlsx report opens", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlements/"+database.DemoPeriodKey+"/report?format=xlsx")
		require.Equal(t, http.StatusOK, w.Code)

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(xlsx.SheetName)
		require.NoError(t, err)
		assert.Greater(t, len(rows), 60)
	})

	t.Run("unknown period", func(t *testing.T) {
		w := get(t, router, "/api/v1/settlements/1999-II/report")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("health", func(t *testing.T) {
		w := get(t, router, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
