// Package settlement turns the quota, landing and deduction records of one
// period into per-row figures and settlement totals. Arithmetic is exact
// decimal; rounding happens only when values are displayed.
package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anyulbade/quota-settlement/internal/fx"
	"github.com/anyulbade/quota-settlement/internal/model"
)

var hundred = decimal.NewFromInt(100)

type Input struct {
	Period     model.SettlementPeriod
	Quotas     []model.QuotaAllocation
	Landings   []model.Landing
	Deductions []model.Deduction
	// Location is the business time zone in which an operation's calendar
	// day is taken. Nil means UTC.
	Location *time.Location
}

func InputFrom(data *model.SettlementData, loc *time.Location) Input {
	return Input{
		Period:     data.Period,
		Quotas:     data.Quotas,
		Landings:   data.Landings,
		Deductions: data.Deductions,
		Location:   loc,
	}
}

// OperationDay returns the calendar day of t in loc, UTC when loc is nil.
func OperationDay(t time.Time, loc *time.Location) fx.Date {
	if loc == nil {
		loc = time.UTC
	}
	return fx.DateOf(t.In(loc))
}

type QuotaRow struct {
	model.QuotaAllocation
	LimitTons decimal.Decimal `json:"limit_tons"`
}

type LandingRow struct {
	model.Landing
	AmountDue decimal.Decimal `json:"amount_due"`
}

type DeductionRow struct {
	model.Deduction
	OperationDay   fx.Date         `json:"operation_day"`
	Rate           decimal.Decimal `json:"rate"`
	RateFound      bool            `json:"rate_found"`
	QuotedOn       fx.Date         `json:"quoted_on"`
	AmountDomestic decimal.Decimal `json:"amount_domestic"`
	AmountForeign  decimal.Decimal `json:"amount_foreign"`
}

type Progress struct {
	TotalQuotaTons  decimal.Decimal `json:"total_quota_tons"`
	TotalLandedTons decimal.Decimal `json:"total_landed_tons"`
	BalanceTons     decimal.Decimal `json:"balance_tons"`
	// PercentAdvanced is a ratio; 0.5 means half the quota has been landed.
	PercentAdvanced decimal.Decimal `json:"percent_advanced"`
}

type Totals struct {
	PricePerTonUSD          decimal.Decimal `json:"price_per_ton_usd"`
	BasePercent             decimal.Decimal `json:"base_percent"`
	TotalIncomeUSD          decimal.Decimal `json:"total_income_usd"`
	TotalDeductionsDomestic decimal.Decimal `json:"total_deductions_domestic"`
	TotalDeductionsForeign  decimal.Decimal `json:"total_deductions_foreign"`
	LiquidationAmount       decimal.Decimal `json:"liquidation_amount"`
	NetBalanceUSD           decimal.Decimal `json:"net_balance_usd"`
}

type Result struct {
	Period     model.SettlementPeriod `json:"period"`
	Quotas     []QuotaRow             `json:"quotas"`
	Landings   []LandingRow           `json:"landings"`
	Deductions []DeductionRow         `json:"deductions"`
	Progress   Progress               `json:"progress"`
	Totals     Totals                 `json:"totals"`
	Location   *time.Location         `json:"-"`
}

// LocalTime returns t in the business time zone of the settlement.
func (r *Result) LocalTime(t time.Time) time.Time {
	if r.Location == nil {
		return t.In(time.UTC)
	}
	return t.In(r.Location)
}

// FallbackDates lists, in row order and without repeats, the operation days
// whose deductions were converted with fx.FallbackRate.
func (r *Result) FallbackDates() []fx.Date {
	var out []fx.Date
	seen := map[fx.Date]bool{}
	for _, d := range r.Deductions {
		day := d.OperationDay
		if d.RateFound || seen[day] {
			continue
		}
		seen[day] = true
		out = append(out, day)
	}
	return out
}

// RateDates returns the distinct deduction operation days, taken in loc, in
// first-seen order.
func RateDates(deductions []model.Deduction, loc *time.Location) []fx.Date {
	out := make([]fx.Date, 0, len(deductions))
	seen := make(map[fx.Date]struct{}, len(deductions))
	for _, d := range deductions {
		day := OperationDay(d.OperatedAt, loc)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}

// Aggregate computes the settlement for one period. It does not modify its
// inputs and keeps every row list in input order.
func Aggregate(in Input, rates fx.Rates) Result {
	price := valueOrZero(in.Period.PricePerTonUSD)
	basePercent := valueOrZero(in.Period.BasePercent)

	res := Result{
		Period:     in.Period,
		Quotas:     make([]QuotaRow, len(in.Quotas)),
		Landings:   make([]LandingRow, len(in.Landings)),
		Deductions: make([]DeductionRow, len(in.Deductions)),
		Location:   in.Location,
	}

	totalQuota := decimal.Zero
	for i, q := range in.Quotas {
		limit := q.SharePercent.Div(hundred).Mul(in.Period.SeasonMaxCaptureTons)
		res.Quotas[i] = QuotaRow{QuotaAllocation: q, LimitTons: limit}
		totalQuota = totalQuota.Add(limit)
	}

	landed := decimal.Zero
	income := decimal.Zero
	for i, l := range in.Landings {
		due := l.Tonnage.Mul(price)
		res.Landings[i] = LandingRow{Landing: l, AmountDue: due}
		landed = landed.Add(l.Tonnage)
		income = income.Add(due)
	}

	dedDomestic := decimal.Zero
	dedForeign := decimal.Zero
	for i, d := range in.Deductions {
		row := convertDeduction(d, rates, in.Location)
		res.Deductions[i] = row
		dedDomestic = dedDomestic.Add(row.AmountDomestic)
		dedForeign = dedForeign.Add(row.AmountForeign)
	}

	percent := decimal.Zero
	if !totalQuota.IsZero() {
		percent = landed.Div(totalQuota)
	}
	res.Progress = Progress{
		TotalQuotaTons:  totalQuota,
		TotalLandedTons: landed,
		BalanceTons:     totalQuota.Sub(landed),
		PercentAdvanced: percent,
	}

	liquidation := income.Mul(basePercent.Div(hundred))
	res.Totals = Totals{
		PricePerTonUSD:          price,
		BasePercent:             basePercent,
		TotalIncomeUSD:          income,
		TotalDeductionsDomestic: dedDomestic,
		TotalDeductionsForeign:  dedForeign,
		LiquidationAmount:       liquidation,
		NetBalanceUSD:           liquidation.Sub(dedForeign),
	}

	return res
}

func convertDeduction(d model.Deduction, rates fx.Rates, loc *time.Location) DeductionRow {
	day := OperationDay(d.OperatedAt, loc)
	row := DeductionRow{Deduction: d, OperationDay: day, Rate: fx.FallbackRate}
	if r, ok := rates.Get(day); ok {
		row.Rate = r.Rate
		row.RateFound = true
		row.QuotedOn = r.QuotedOn
	}

	if d.Domestic() {
		row.AmountDomestic = d.Amount
		if row.Rate.IsPositive() {
			row.AmountForeign = d.Amount.Div(row.Rate)
		} else {
			row.AmountForeign = d.Amount
		}
		return row
	}

	row.AmountForeign = d.Amount
	row.AmountDomestic = d.Amount.Mul(row.Rate)
	return row
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
