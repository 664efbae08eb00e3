package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iwvelando/tuition-calculator/internal/rates"
	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// tuitionPairs lists every level/residency feed in load order.
var tuitionPairs = [][2]string{
	{constants.LevelUndergraduate, constants.ResidencyResident},
	{constants.LevelUndergraduate, constants.ResidencyNonresident},
	{constants.LevelGraduate, constants.ResidencyResident},
	{constants.LevelGraduate, constants.ResidencyNonresident},
}

// Loader fetches all feeds from a Source and commits them to a Store. A new
// Load cancels the one still in flight.
type Loader struct {
	source  Source
	store   *rates.Store
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewLoader returns a Loader. A zero timeout means no deadline beyond ctx.
func NewLoader(logger *zap.Logger, source Source, store *rates.Store, timeout time.Duration) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{source: source, store: store, logger: logger, timeout: timeout}
}

// Load reads every feed, builds a snapshot and commits it. On failure the
// previously committed snapshot stays in place.
func (l *Loader) Load(ctx context.Context) (*rates.Snapshot, error) {
	ctx, cancel := l.supersede(ctx)
	defer cancel()

	gen := l.store.Begin()
	start := time.Now()

	feeds, err := l.fetch(ctx)
	if errors.Is(err, context.Canceled) {
		l.logger.Info("rate feed load superseded",
			zap.String("op", "ingest.Load"),
			zap.Uint64("generation", gen),
		)
		return nil, err
	}
	if err != nil {
		l.logger.Error("failed to load rate feeds",
			zap.String("op", "ingest.Load"),
			zap.Uint64("generation", gen),
			zap.Error(err),
		)
		return nil, err
	}

	snap, err := BuildSnapshot(l.logger, feeds)
	if err != nil {
		l.logger.Error("failed to build rate snapshot",
			zap.String("op", "ingest.Load"),
			zap.Uint64("generation", gen),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to build rate snapshot: %w", err)
	}

	if err := l.store.Commit(gen, snap); err != nil {
		l.logger.Info("discarding superseded rate snapshot",
			zap.String("op", "ingest.Load"),
			zap.Uint64("generation", gen),
		)
		return nil, err
	}

	l.logger.Info("loaded rate feeds",
		zap.String("op", "ingest.Load"),
		zap.Uint64("generation", gen),
		zap.Int("tuitionRows", snap.TuitionRows()),
		zap.Int("halls", len(snap.Halls())),
		zap.Int("mealPlans", len(snap.MealPlans())),
		zap.Duration("duration", time.Since(start)),
	)
	return snap, nil
}

// supersede cancels the previous in-flight load and derives the context for
// this one.
func (l *Loader) supersede(parent context.Context) (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if l.timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, l.timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.mu.Unlock()

	return ctx, cancel
}

func (l *Loader) fetch(ctx context.Context) (Feeds, error) {
	feeds := Feeds{Tuition: make([]TuitionFeed, len(tuitionPairs))}
	g, ctx := errgroup.WithContext(ctx)

	for i, pair := range tuitionPairs {
		i, pair := i, pair
		g.Go(func() error {
			table, err := l.read(ctx, constants.TuitionFile(pair[0], pair[1]))
			if err != nil {
				return err
			}
			feeds.Tuition[i] = TuitionFeed{Level: pair[0], Residency: pair[1], Table: table}
			return nil
		})
	}

	singles := []struct {
		name string
		dst  *Table
	}{
		{constants.FileAdditionalCosts, &feeds.Additional},
		{constants.FileResidenceHalls, &feeds.Halls},
		{constants.FileMealPlans, &feeds.Meals},
	}
	for _, s := range singles {
		s := s
		g.Go(func() error {
			table, err := l.read(ctx, s.name)
			if err != nil {
				return err
			}
			*s.dst = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Feeds{}, err
	}
	return feeds, nil
}

func (l *Loader) read(ctx context.Context, name string) (Table, error) {
	rc, err := l.source.Open(ctx, name)
	if err != nil {
		return Table{}, err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			l.logger.Warn("failed to close feed",
				zap.String("op", "ingest.read"),
				zap.String("feed", name),
				zap.Error(closeErr),
			)
		}
	}()

	table, err := ParseTable(rc)
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	l.logger.Debug("parsed feed",
		zap.String("op", "ingest.read"),
		zap.String("feed", name),
		zap.Int("rows", len(table.Rows)),
	)
	return table, nil
}
