package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/salesight/backend-go/internal/analytics"
	"github.com/salesight/backend-go/internal/cache"
	"github.com/salesight/backend-go/internal/config"
	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
)

// AnalyticsService orchestrates the engines over a validated dataset. The
// engines are pure and independent, so the dashboard run executes them
// concurrently; only the dataset contract is ordered before everything else,
// and that has already happened by the time a *dataset.Dataset exists.
type AnalyticsService struct {
	cfg   config.AnalyticsConfig
	cache cache.ResultCache

	rfm        *analytics.RFMEngine
	timeSeries *analytics.TimeSeriesEngine
	forecast   *analytics.ForecastEngine
	inventory  *analytics.InventoryEngine
	categories *analytics.CategoryEngine
}

func NewAnalyticsService(cfg config.AnalyticsConfig, cacheImpl cache.ResultCache) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopResultCache()
	}
	return &AnalyticsService{
		cfg:   cfg,
		cache: cacheImpl,
		rfm:   analytics.NewRFMEngine(),
		timeSeries: analytics.NewTimeSeriesEngine(
			cfg.ShortMovingAvgWindow,
			cfg.LongMovingAvgWindow,
			cfg.DecompositionPeriod,
		),
		forecast: analytics.NewForecastEngine(analytics.ForecastConfig{
			MaxAutoregOrder:      cfg.MaxAutoregOrder,
			WeeklySeasonalPeriod: cfg.WeeklySeasonalPeriod,
			IntervalZ:            cfg.ForecastInterval,
		}),
		inventory: analytics.NewInventoryEngine(
			cfg.SafetyStockFactor,
			cfg.ReorderPointFactor,
			cfg.HighStockRatio,
		),
		categories: analytics.NewCategoryEngine(),
	}
}

// normalize applies defaults and the caller's filters. Filtering happens
// exactly once, before any engine runs.
func (s *AnalyticsService) normalize(ds *dataset.Dataset, params domain.AnalysisParams) (*dataset.Dataset, domain.AnalysisParams) {
	if params.HorizonDays <= 0 {
		params.HorizonDays = s.cfg.ForecastHorizonDays
	}
	filtered := ds.FilterDateRange(params.From, params.To)
	if params.Category != "" {
		filtered = filtered.FilterCategory(params.Category)
	}
	return filtered, params
}

// Dashboard runs every applicable engine and assembles the full bundle.
//
// Soft failures stay soft: a dataset without customers skips segmentation, a
// forecast fit failure is recorded inside the bundle, and a series too short
// to decompose simply lacks the decomposition. The call itself fails only on
// context cancellation.
func (s *AnalyticsService) Dashboard(ctx context.Context, datasetKey string, ds *dataset.Dataset, params domain.AnalysisParams) (*domain.DashboardResult, error) {
	filtered, params := s.normalize(ds, params)

	if cached, ok, err := s.cache.Get(ctx, datasetKey, params); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analytics: cache get failed")
	}

	result := &domain.DashboardResult{
		GeneratedAt: time.Now().UTC(),
		Params:      params,
		Records:     filtered.Len(),
	}

	g, ctx := errgroup.WithContext(ctx)

	if filtered.HasCustomerID() {
		g.Go(func() error {
			records, err := s.rfm.Compute(filtered)
			if err != nil {
				log.Warn().Err(err).Msg("analytics: segmentation failed")
				return nil
			}
			result.RFM = records
			return nil
		})
	}

	g.Go(func() error {
		ts, err := s.timeSeries.Analyze(filtered)
		if err != nil {
			log.Warn().Err(err).Msg("analytics: time series failed")
			return nil
		}
		result.TimeSeries = ts
		return nil
	})

	g.Go(func() error {
		bundle, err := s.forecast.Forecast(filtered, params.HorizonDays)
		if err != nil {
			// Too few points is an expected state for fresh datasets.
			if !errors.Is(err, analytics.ErrInsufficientData) {
				log.Warn().Err(err).Msg("analytics: forecast failed")
			}
			return nil
		}
		result.Forecast = bundle
		return nil
	})

	g.Go(func() error {
		result.Inventory = s.inventory.Analyze(filtered)
		return nil
	})

	if filtered.HasCategory() {
		g.Go(func() error {
			cats, err := s.categories.Analyze(filtered)
			if err != nil {
				log.Warn().Err(err).Msg("analytics: category analysis failed")
				return nil
			}
			result.Categories = cats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, datasetKey, params, result); err != nil {
		log.Warn().Err(err).Msg("analytics: cache set failed")
	}

	return result, nil
}

// RFM runs segmentation alone. Unlike the dashboard run, calling it on a
// dataset without a customer column is an error the caller asked for.
func (s *AnalyticsService) RFM(ds *dataset.Dataset, params domain.AnalysisParams) ([]domain.RFMRecord, error) {
	filtered, _ := s.normalize(ds, params)
	return s.rfm.Compute(filtered)
}

// TimeSeries runs the time-series engine alone.
func (s *AnalyticsService) TimeSeries(ds *dataset.Dataset, params domain.AnalysisParams) (*domain.TimeSeriesResult, error) {
	filtered, _ := s.normalize(ds, params)
	return s.timeSeries.Analyze(filtered)
}

// Forecast runs both forecast models alone.
func (s *AnalyticsService) Forecast(ds *dataset.Dataset, params domain.AnalysisParams) (*domain.ForecastBundle, error) {
	filtered, params := s.normalize(ds, params)
	return s.forecast.Forecast(filtered, params.HorizonDays)
}

// Inventory runs the inventory heuristics alone.
func (s *AnalyticsService) Inventory(ds *dataset.Dataset, params domain.AnalysisParams) []domain.ProductInventory {
	filtered, _ := s.normalize(ds, params)
	return s.inventory.Analyze(filtered)
}

// Categories runs the category analysis alone.
func (s *AnalyticsService) Categories(ds *dataset.Dataset, params domain.AnalysisParams) (*domain.CategoryAnalysis, error) {
	filtered, _ := s.normalize(ds, params)
	return s.categories.Analyze(filtered)
}
