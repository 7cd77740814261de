package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/quota-settlement/internal/fx"
	"github.com/anyulbade/quota-settlement/internal/layout"
	"github.com/anyulbade/quota-settlement/internal/model"
	"github.com/anyulbade/quota-settlement/internal/render"
	"github.com/anyulbade/quota-settlement/internal/report"
	"github.com/anyulbade/quota-settlement/internal/settlement"
)

var ErrPeriodNotFound = errors.New("settlement period not found")

type SettlementStore interface {
	LoadSettlementData(ctx context.Context, periodKey string) (*model.SettlementData, error)
}

type LogoStore interface {
	GetLogo(ctx context.Context, companyID string) (*model.Logo, error)
}

type ReportOption func(*ReportService)

func WithResolverOptions(opts ...fx.Option) ReportOption {
	return func(s *ReportService) {
		s.resolverOpts = append(s.resolverOpts, opts...)
	}
}

func WithClock(now func() time.Time) ReportOption {
	return func(s *ReportService) {
		s.now = now
	}
}

// WithLocation sets the business time zone. Operation days, and therefore
// the exchange rate dates, are taken in it.
func WithLocation(loc *time.Location) ReportOption {
	return func(s *ReportService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

type ReportService struct {
	store        SettlementStore
	logos        LogoStore
	provider     fx.Provider
	engine       *layout.Engine
	backends     *render.Registry
	resolverOpts []fx.Option
	now          func() time.Time
	loc          *time.Location
}

func NewReportService(store SettlementStore, logos LogoStore, provider fx.Provider, engine *layout.Engine, backends *render.Registry, opts ...ReportOption) *ReportService {
	s := &ReportService{
		store:    store,
		logos:    logos,
		provider: provider,
		engine:   engine,
		backends: backends,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report is a rendered settlement document.
type Report struct {
	Data        []byte
	ContentType string
	Filename    string
	Pages       int
}

// Summary is the computed settlement without rendering.
type Summary struct {
	*settlement.Result
	FallbackDates []fx.Date `json:"fallback_dates"`
	RateLookups   int64     `json:"rate_lookups"`
}

// GenerateSettlementReport loads a period, resolves the exchange rates its
// deductions need, computes the settlement and renders it in format. Rate
// gaps and an unusable logo never fail the report; missing period data does.
func (s *ReportService) GenerateSettlementReport(ctx context.Context, periodKey string, format render.Format) (*Report, error) {
	start := time.Now()
	backend, err := s.backends.Get(format)
	if err != nil {
		return nil, err
	}

	res, resolver, err := s.compute(ctx, periodKey)
	if err != nil {
		return nil, err
	}

	lh, sections := report.Build(res, s.loadLogo(ctx, res.Period.Company.ID), s.now())
	doc, err := s.engine.Paginate(lh, sections)
	if err != nil {
		return nil, fmt.Errorf("paginate report: %w", err)
	}

	data, err := backend.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	log.Info().
		Str("period", periodKey).
		Str("format", string(format)).
		Int("pages", len(doc.Pages)).
		Int64("lookups", resolver.Lookups()).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("settlement report generated")

	return &Report{
		Data:        data,
		ContentType: backend.ContentType(),
		Filename:    Filename(periodKey, backend.Extension()),
		Pages:       len(doc.Pages),
	}, nil
}

func (s *ReportService) Summary(ctx context.Context, periodKey string) (*Summary, error) {
	res, resolver, err := s.compute(ctx, periodKey)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Result:        res,
		FallbackDates: res.FallbackDates(),
		RateLookups:   resolver.Lookups(),
	}, nil
}

// compute runs one settlement with a fresh resolver, so the rate cache never
// outlives a single report.
func (s *ReportService) compute(ctx context.Context, periodKey string) (*settlement.Result, *fx.Resolver, error) {
	data, err := s.store.LoadSettlementData(ctx, periodKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrPeriodNotFound, periodKey)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load settlement data: %w", err)
	}

	resolver := fx.NewResolver(s.provider, s.resolverOpts...)
	rates := resolver.Resolve(ctx, settlement.RateDates(data.Deductions, s.loc))
	res := settlement.Aggregate(settlement.InputFrom(data, s.loc), rates)

	if dates := res.FallbackDates(); len(dates) > 0 {
		log.Warn().Str("period", periodKey).Int("days", len(dates)).Msg("deductions converted with fallback rate")
	}
	return &res, resolver, nil
}

func (s *ReportService) loadLogo(ctx context.Context, companyID string) *model.Logo {
	if s.logos == nil {
		return nil
	}
	logo, err := s.logos.GetLogo(ctx, companyID)
	if err != nil {
		log.Debug().Err(err).Str("company", companyID).Msg("rendering letterhead without logo")
		return nil
	}
	return logo
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func Filename(periodKey, ext string) string {
	return fmt.Sprintf("settlement-%s.%s", unsafeFilename.ReplaceAllString(periodKey, "_"), ext)
}
