package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"energywatch/internal/observability/metrics"
	recommend "energywatch/internal/recommend/domain"
	tariff "energywatch/internal/tariff/domain"
	telemetry "energywatch/internal/telemetry/domain"
)

const (
	// minObservedKWh is the noise floor: windows below it never trigger,
	// whatever the baseline says.
	minObservedKWh = 0.01

	// minExpectedKWh is the clamp applied to a zero/negative baseline so
	// the excess rule still demands a non-trivial absolute amount.
	minExpectedKWh = 0.01

	// excessFactor is the trigger threshold relative to the baseline.
	// Strictly greater than expected*excessFactor is required.
	excessFactor = 1.25

	peakAdvice    = "Peak hours: shift flexible loads outside the peak window."
	genericAdvice = "Check for lights or appliances left running."
)

// OwnerDirectory lists every account owner the agent iterates.
type OwnerDirectory interface {
	ListOwnerIDs(ctx context.Context) ([]int64, error)
}

// ReadingQuery loads an owner's readings for a half-open time range.
type ReadingQuery interface {
	ListByOwnerAndRange(ctx context.Context, ownerID int64, from, to time.Time) ([]telemetry.Reading, error)
}

// TariffFinder resolves an owner's tariff; nil means none configured.
type TariffFinder interface {
	FindByOwner(ctx context.Context, ownerID int64) (*tariff.Tariff, error)
}

// BaselineSource computes the expected-consumption profile for an owner.
type BaselineSource interface {
	HourlyBaseline(ctx context.Context, ownerID int64, days int) (map[int]float64, error)
}

// RecommendationStore persists emitted recommendations.
type RecommendationStore interface {
	Save(ctx context.Context, rec *recommend.Recommendation) error
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// Agent compares each owner's recent consumption window against the
// hourly baseline and emits graded recommendations on significant excess.
// It is stateless across ticks; the baseline is recomputed every run.
type Agent struct {
	owners   OwnerDirectory
	readings ReadingQuery
	tariffs  TariffFinder
	baseline BaselineSource
	store    RecommendationStore
	clock    Clock
	zone     *time.Location
	cfg      Config
	logger   *log.Logger
}

// NewAgent constructs an Agent.
func NewAgent(
	owners OwnerDirectory,
	readings ReadingQuery,
	tariffs TariffFinder,
	baseline BaselineSource,
	store RecommendationStore,
	clock Clock,
	zone *time.Location,
	cfg Config,
	logger *log.Logger,
) (*Agent, error) {
	if owners == nil || readings == nil || tariffs == nil || baseline == nil || store == nil {
		return nil, errors.New("agent: nil dependency")
	}
	if clock == nil {
		return nil, errors.New("agent: nil clock")
	}
	if zone == nil {
		zone = time.UTC
	}
	return &Agent{
		owners:   owners,
		readings: readings,
		tariffs:  tariffs,
		baseline: baseline,
		store:    store,
		clock:    clock,
		zone:     zone,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// RunTick evaluates every owner once. A failing owner is logged and does
// not stop the remaining owners; the returned error reflects only the
// owner-listing read.
func (a *Agent) RunTick(ctx context.Context) error {
	owners, err := a.owners.ListOwnerIDs(ctx)
	if err != nil {
		metrics.IncAgentTick(err)
		return fmt.Errorf("agent: list owners: %w", err)
	}

	for _, ownerID := range owners {
		started := a.clock.Now()
		err := a.GenerateForOwner(ctx, ownerID)
		metrics.ObserveOwnerRun(err, a.clock.Now().Sub(started))
		if err != nil && a.logger != nil {
			a.logger.Printf("agent: owner %d: %v", ownerID, err)
		}
	}
	metrics.IncAgentTick(nil)
	return nil
}

// GenerateForOwner runs the full evaluation for one owner. It is the same
// procedure the scheduler runs per tick; the manual-trigger endpoint
// calls it directly.
func (a *Agent) GenerateForOwner(ctx context.Context, ownerID int64) error {
	now := a.clock.Now().In(a.zone)
	windowMinutes := a.cfg.EffectiveWindowMinutes()
	start := now.Add(-time.Duration(windowMinutes) * time.Minute)

	window, err := a.readings.ListByOwnerAndRange(ctx, ownerID, start, now)
	if err != nil {
		return fmt.Errorf("agent: read window: %w", err)
	}
	if len(window) == 0 {
		return nil
	}

	var observed float64
	for _, r := range window {
		observed += r.KWh()
	}
	if observed < minObservedKWh {
		return nil
	}

	hour := now.Hour()

	// A failing history read degrades to an empty profile; the tick must
	// never abort on the forecaster.
	expected := 0.0
	if profile, err := a.baseline.HourlyBaseline(ctx, ownerID, a.cfg.HistoryDays); err != nil {
		if a.logger != nil {
			a.logger.Printf("agent: owner %d: baseline unavailable: %v", ownerID, err)
		}
	} else {
		expected = profile[hour]
	}
	if expected <= 0.0 {
		expected = minExpectedKWh
	}

	t, err := a.tariffs.FindByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("agent: read tariff: %w", err)
	}
	isPeak := false
	if t != nil {
		isPeak = recommend.InPeakWindow(hour, t.PeakStart, t.PeakEnd)
	}

	threshold := expected * excessFactor
	if observed <= threshold {
		return nil
	}

	level := recommend.LevelWarn
	advice := genericAdvice
	if isPeak {
		level = recommend.LevelAlert
		advice = peakAdvice
	}

	rec := &recommend.Recommendation{
		OwnerID: ownerID,
		Level:   level,
		Status:  recommend.StatusNew,
		Message: fmt.Sprintf(
			"High consumption (last %d min): %.3f kWh (expected ~%.3f kWh). %s",
			windowMinutes, observed, expected, advice,
		),
		CreatedAt: a.clock.Now(),
	}
	if err := a.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("agent: save recommendation: %w", err)
	}
	metrics.IncRecommendationEmitted(string(level))
	return nil
}
