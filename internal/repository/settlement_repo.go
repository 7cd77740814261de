package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/anyulbade/quota-settlement/internal/model"
)

type SettlementRepository struct {
	pool *pgxpool.Pool
}

func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

// GetPeriod returns pgx.ErrNoRows when key is unknown.
func (r *SettlementRepository) GetPeriod(ctx context.Context, key string) (*model.SettlementPeriod, error) {
	p := &model.SettlementPeriod{}
	var price, base decimal.NullDecimal
	err := r.pool.QueryRow(ctx,
		`SELECT sp.key, sp.season_name, sp.season_max_capture_tons, sp.price_per_ton_usd, sp.base_percent, sp.created_at,
			c.id, c.name, c.tax_id, COALESCE(c.address, '')
		FROM settlement_periods sp
		JOIN companies c ON c.id = sp.company_id
		WHERE sp.key = $1`, key).
		Scan(&p.Key, &p.SeasonName, &p.SeasonMaxCaptureTons, &price, &base, &p.CreatedAt,
			&p.Company.ID, &p.Company.Name, &p.Company.TaxID, &p.Company.Address)
	if err != nil {
		return nil, err
	}
	p.PricePerTonUSD = nullable(price)
	p.BasePercent = nullable(base)
	return p, nil
}

func (r *SettlementRepository) ListQuotas(ctx context.Context, periodKey string) ([]model.QuotaAllocation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT zone_id, owned, name, fishing, price_per_ton, share_percent
		FROM quota_allocations
		WHERE period_key = $1
		ORDER BY id`, periodKey)
	if err != nil {
		return nil, fmt.Errorf("query quotas: %w", err)
	}
	defer rows.Close()

	var out []model.QuotaAllocation
	for rows.Next() {
		var q model.QuotaAllocation
		if err := rows.Scan(&q.ZoneID, &q.Owned, &q.Name, &q.Fishing, &q.PricePerTon, &q.SharePercent); err != nil {
			return nil, fmt.Errorf("scan quota: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *SettlementRepository) ListLandings(ctx context.Context, periodKey string) ([]model.Landing, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT unloaded_at, species_code, species_name, tonnage
		FROM landings
		WHERE period_key = $1
		ORDER BY unloaded_at, id`, periodKey)
	if err != nil {
		return nil, fmt.Errorf("query landings: %w", err)
	}
	defer rows.Close()

	var out []model.Landing
	for rows.Next() {
		var l model.Landing
		if err := rows.Scan(&l.UnloadedAt, &l.SpeciesCode, &l.SpeciesName, &l.Tonnage); err != nil {
			return nil, fmt.Errorf("scan landing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SettlementRepository) ListDeductions(ctx context.Context, periodKey string) ([]model.Deduction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT operated_at, currency, amount, description, COALESCE(product_code, ''), COALESCE(product_name, '')
		FROM deductions
		WHERE period_key = $1
		ORDER BY operated_at, id`, periodKey)
	if err != nil {
		return nil, fmt.Errorf("query deductions: %w", err)
	}
	defer rows.Close()

	var out []model.Deduction
	for rows.Next() {
		var d model.Deduction
		var currency string
		if err := rows.Scan(&d.OperatedAt, &currency, &d.Amount, &d.Description, &d.ProductCode, &d.ProductName); err != nil {
			return nil, fmt.Errorf("scan deduction: %w", err)
		}
		d.Currency = model.Currency(currency)
		out = append(out, d)
	}
	return out, rows.Err()
}

// LoadSettlementData reads a period and its record lists. The lists are
// queried concurrently once the period is known to exist.
func (r *SettlementRepository) LoadSettlementData(ctx context.Context, periodKey string) (*model.SettlementData, error) {
	period, err := r.GetPeriod(ctx, periodKey)
	if err != nil {
		return nil, err
	}

	data := &model.SettlementData{Period: *period}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Quotas, err = r.ListQuotas(gctx, periodKey)
		return err
	})
	g.Go(func() error {
		var err error
		data.Landings, err = r.ListLandings(gctx, periodKey)
		return err
	})
	g.Go(func() error {
		var err error
		data.Deductions, err = r.ListDeductions(gctx, periodKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

type PeriodRow struct {
	Key         string `json:"key"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	SeasonName  string `json:"season_name"`
	Quotas      int    `json:"quotas"`
	Landings    int    `json:"landings"`
	Deductions  int    `json:"deductions"`
}

func (r *SettlementRepository) ListPeriods(ctx context.Context, companyID string, limit, offset int) ([]PeriodRow, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM settlement_periods WHERE ($1 = '' OR company_id = $1)`, companyID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count periods: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT sp.key, c.id, c.name, sp.season_name,
			(SELECT COUNT(*) FROM quota_allocations q WHERE q.period_key = sp.key),
			(SELECT COUNT(*) FROM landings l WHERE l.period_key = sp.key),
			(SELECT COUNT(*) FROM deductions d WHERE d.period_key = sp.key)
		FROM settlement_periods sp
		JOIN companies c ON c.id = sp.company_id
		WHERE ($1 = '' OR sp.company_id = $1)
		ORDER BY sp.created_at DESC, sp.key
		LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	var out []PeriodRow
	for rows.Next() {
		var p PeriodRow
		if err := rows.Scan(&p.Key, &p.CompanyID, &p.CompanyName, &p.SeasonName, &p.Quotas, &p.Landings, &p.Deductions); err != nil {
			return nil, 0, fmt.Errorf("scan period: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
