package database

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	DemoCompanyID = "pesquera-norte"
	DemoPeriodKey = "2024-I"
)

type vesselProfile struct {
	Zone    string
	Name    string
	Owned   bool
	Fishing bool
	Share   string // percent of the season's maximum capture
	Price   string // USD per ton
}

var vessels = []vesselProfile{
	{"NC", "Don Lucho", true, true, "0.185400", "210.00"},
	{"NC", "Maria Jose", true, true, "0.142300", "210.00"},
	{"NC", "San Pedro II", true, false, "0.096100", "205.50"},
	{"NC", "Rosa Elvira", false, true, "0.071900", "198.00"},
	{"NC", "Tiburon I", false, true, "0.064200", "198.00"},
	{"S", "Virgen del Carmen", true, true, "0.120800", "212.00"},
	{"S", "Estrella del Sur", true, false, "0.053700", "207.25"},
	{"S", "Mi Gianella", false, false, "0.041600", "195.00"},
	{"NC", "Cruz de Motupe", true, true, "0.110500", "210.00"},
	{"S", "Pacifico Azul", false, true, "0.088300", "200.00"},
}

var species = []struct{ Code, Name string }{
	{"ANC", "Anchoveta"},
	{"ANC", "Anchoveta"},
	{"ANC", "Anchoveta"},
	{"JUR", "Jurel"},
	{"CAB", "Caballa"},
}

var deductionConcepts = []struct {
	Currency    string
	Description string
	ProductCode string
	ProductName string
	Range       [2]float64
}{
	{"PEN", "Diesel B5 supply", "", "", [2]float64{4000, 18000}},
	{"PEN", "", "ICE-25", "Flake ice 25 kg", [2]float64{800, 2600}},
	{"PEN", "Crew food provisions", "", "", [2]float64{1200, 3500}},
	{"USD", "Net repair", "", "", [2]float64{300, 2400}},
	{"USD", "", "SAT-01", "Satellite monitoring fee", [2]float64{90, 150}},
	{"PEN", "Port unloading fee", "", "", [2]float64{350, 900}},
}

// SeedData inserts one demo company with a first-season settlement period.
// It is a no-op when the company already exists.
func SeedData(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM companies WHERE id = $1", DemoCompanyID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed data already exists, skipping")
		return nil
	}

	logo, err := demoLogo()
	if err != nil {
		return fmt.Errorf("build demo logo: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO companies (id, name, tax_id, address, logo) VALUES ($1, $2, $3, $4, $5)`,
		DemoCompanyID, "Pesquera Norte SAC", "20123456789", "Av. Jose Galvez 1020, Chimbote", logo)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO settlement_periods (key, company_id, season_name, season_max_capture_tons, price_per_ton_usd, base_percent)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		DemoPeriodKey, DemoCompanyID, "First Anchoveta Season 2024 North-Central",
		decimal.RequireFromString("2475000"), decimal.RequireFromString("210.00"), decimal.RequireFromString("80"))
	if err != nil {
		return fmt.Errorf("insert period: %w", err)
	}

	for _, v := range vessels {
		_, err := tx.Exec(ctx,
			`INSERT INTO quota_allocations (period_key, zone_id, owned, name, fishing, price_per_ton, share_percent)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			DemoPeriodKey, v.Zone, v.Owned, v.Name, v.Fishing,
			decimal.RequireFromString(v.Price), decimal.RequireFromString(v.Share))
		if err != nil {
			return fmt.Errorf("insert quota %s: %w", v.Name, err)
		}
	}
	log.Info().Int("count", len(vessels)).Msg("inserted quota allocations")

	seasonStart := time.Date(2024, 4, 22, 0, 0, 0, 0, time.UTC)

	landings := 0
	for day := 0; day < 60; day++ {
		trips := rng.Intn(3)
		for i := 0; i < trips; i++ {
			sp := species[rng.Intn(len(species))]
			unloaded := seasonStart.AddDate(0, 0, day).
				Add(time.Duration(4+rng.Intn(16)) * time.Hour).
				Add(time.Duration(rng.Intn(60)) * time.Minute)
			tons := decimal.NewFromFloat(80 + rng.Float64()*420).Round(3)
			if err := insertLanding(ctx, tx, unloaded, sp.Code, sp.Name, tons); err != nil {
				return err
			}
			landings++
		}
	}
	log.Info().Int("count", landings).Msg("inserted landings")

	deductions := 0
	for day := 0; day < 60; day += 1 + rng.Intn(3) {
		c := deductionConcepts[rng.Intn(len(deductionConcepts))]
		operated := seasonStart.AddDate(0, 0, day).Add(time.Duration(8+rng.Intn(9)) * time.Hour)
		amount := decimal.NewFromFloat(c.Range[0] + rng.Float64()*(c.Range[1]-c.Range[0])).Round(2)
		_, err := tx.Exec(ctx,
			`INSERT INTO deductions (period_key, operated_at, currency, amount, description, product_code, product_name)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))`,
			DemoPeriodKey, operated, c.Currency, amount, c.Description, c.ProductCode, c.ProductName)
		if err != nil {
			return fmt.Errorf("insert deduction: %w", err)
		}
		deductions++
	}
	log.Info().Int("count", deductions).Msg("inserted deductions")

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed data: %w", err)
	}

	log.Info().Msg("seed data generation complete")
	return nil
}

func insertLanding(ctx context.Context, tx pgx.Tx, at time.Time, code, name string, tons decimal.Decimal) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO landings (period_key, unloaded_at, species_code, species_name, tonnage)
		VALUES ($1, $2, $3, $4, $5)`,
		DemoPeriodKey, at, code, name, tons)
	if err != nil {
		return fmt.Errorf("insert landing: %w", err)
	}
	return nil
}

// demoLogo draws a small two-tone wave mark.
func demoLogo() ([]byte, error) {
	const w, h = 120, 60
	navy := color.RGBA{R: 31, G: 78, B: 121, A: 255}
	sea := color.RGBA{R: 91, G: 155, B: 213, A: 255}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		crest := h/2 + (x%30-15)*(x%30-15)/25
		for y := 0; y < h; y++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			switch {
			case y > crest+10:
				c = navy
			case y > crest:
				c = sea
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
