package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// SummaryOptions configure the summary service.
type SummaryOptions struct {
	// DueSoonDays is the due-soon alert window; zero means engine.DefaultDueSoonDays.
	DueSoonDays int

	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location

	// CacheSize bounds how many computed summaries are kept.
	CacheSize int64

	// Now defaults to time.Now.
	Now func() time.Time
}

// summaryService computes dashboard views over a user's records. Results
// are cached per records version, so any write makes them unreachable.
// Cached values are shared between callers and must not be modified.
type summaryService struct {
	db    *gorm.DB
	opts  SummaryOptions
	cache *ristretto.Cache[string, any]
	group singleflight.Group
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB, opts SummaryOptions) (SummaryServicer, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1000
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: opts.CacheSize * 10,
		MaxCost:     opts.CacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summary cache: %w", err)
	}
	return &summaryService{db: db, opts: opts, cache: cache}, nil
}

func (s *summaryService) today() time.Time {
	return engine.Civil(s.opts.Now().In(s.opts.Location))
}

func (s *summaryService) recordsVersion(ctx context.Context, userID string) (int64, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("id", "records_version").Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrUserNotFound
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user.RecordsVersion, nil
}

// memoize returns the cached value for key or computes it once, however
// many callers ask for it concurrently.
func (s *summaryService) memoize(ctx context.Context, key, userID string, compute func(*snapshot) any) (any, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		snap, err := loadSnapshot(s.db.WithContext(ctx), userID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if snap.unknown > 0 {
			logger.For("summary").Warnw("skipping transactions with unknown category",
				"user_id", userID,
				"count", snap.unknown,
			)
		}

		result := compute(snap)
		s.cache.Set(key, result, 1)
		logger.For("summary").Debugw("computed",
			"key", key,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return result, nil
	})
	return v, err
}

// GetMonthlySummary computes the dashboard of one month as of today.
func (s *summaryService) GetMonthlySummary(ctx context.Context, userID string, period engine.Period) (*engine.Summary, error) {
	if err := period.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPeriod, err.Error())
	}
	version, err := s.recordsVersion(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.today()

	key := fmt.Sprintf("monthly:%s:%d:%s:%s", userID, version, period, today.Format(time.DateOnly))
	v, err := s.memoize(ctx, key, userID, func(snap *snapshot) any {
		summary := engine.Compute(snap.records, period, engine.Options{
			Today:       today,
			DueSoonDays: s.opts.DueSoonDays,
		})
		summary.Skipped += snap.unknown
		return summary
	})
	if err != nil {
		return nil, err
	}
	summary := v.(engine.Summary)
	return &summary, nil
}

// GetAnnualOverview computes the overview of a calendar year as of today.
func (s *summaryService) GetAnnualOverview(ctx context.Context, userID string, year int) (*engine.YearOverview, error) {
	if err := (engine.Period{Year: year, Month: time.January}).Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPeriod, err.Error())
	}
	version, err := s.recordsVersion(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.today()

	key := fmt.Sprintf("annual:%s:%d:%d:%s", userID, version, year, today.Format(time.DateOnly))
	v, err := s.memoize(ctx, key, userID, func(snap *snapshot) any {
		overview := engine.ComputeYear(snap.records, year, today, nil)
		overview.Skipped += snap.unknown
		return overview
	})
	if err != nil {
		return nil, err
	}
	overview := v.(engine.YearOverview)
	return &overview, nil
}
