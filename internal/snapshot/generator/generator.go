package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsgrid/facilitypulse/internal/clock"
	facilitydomain "github.com/opsgrid/facilitypulse/internal/facility/domain"
	obsmetrics "github.com/opsgrid/facilitypulse/internal/observability/metrics"
	snapshotdomain "github.com/opsgrid/facilitypulse/internal/snapshot/domain"
	"github.com/opsgrid/facilitypulse/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoHVACStatuses reports an empty HVAC status reference set, which makes
// random status selection impossible. It is a bootstrap problem, not a
// transient storage failure.
var ErrNoHVACStatuses = errors.New("no hvac statuses seeded")

// ErrStaleReference reports a metric insert rejected by a foreign key
// constraint, meaning reference data changed underneath a running batch.
var ErrStaleReference = errors.New("metric references missing reference data")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	FacilityRepo facilitydomain.Repository
	SnapshotRepo snapshotdomain.Repository
	Rand         *rand.Rand `optional:"true"`
	Config       Config     `optional:"true"`
}

// Generator produces one complete snapshot per run: a snapshot execution
// row plus one metric row per active facility, finalized as success or
// failed. It owns retention enforcement after successful runs.
type Generator struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	facilities facilitydomain.Repository
	snapshots  snapshotdomain.Repository
	rng        *rand.Rand
	cfg        Config
}

func New(p Params) *Generator {
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		db:         p.DB,
		log:        p.Log.Named("snapshot.generator"),
		clock:      p.Clock,
		facilities: p.FacilityRepo,
		snapshots:  p.SnapshotRepo,
		rng:        rng,
		cfg:        p.Config.withDefaults(),
	}
}

// Run executes one generation attempt. Generation failures are converted
// into a failed execution row and logged; the returned error exists for
// tests and manual triggers, the periodic timer discards it.
func (g *Generator) Run(ctx context.Context) error {
	start := g.clock.Now()
	snapMetrics := obsmetrics.Snapshot()

	execution, err := g.snapshots.CreateExecution(ctx, g.db, start)
	if err != nil {
		snapMetrics.IncRun(string(snapshotdomain.ExecutionStatusFailed))
		g.log.Warn("create snapshot execution failed", zap.Error(err))
		return fmt.Errorf("create execution: %w", err)
	}

	log := g.log.With(zap.String("snapshot_id", execution.ID.String()))

	if err := g.generateMetrics(ctx, execution); err != nil {
		durationMS := g.clock.Now().Sub(start).Milliseconds()
		if finErr := g.snapshots.FinalizeExecution(ctx, g.db, execution.ID, snapshotdomain.ExecutionStatusFailed, durationMS); finErr != nil {
			log.Error("finalize failed execution", zap.Error(finErr))
		}
		snapMetrics.IncRun(string(snapshotdomain.ExecutionStatusFailed))
		log.Warn("snapshot generation failed", zap.Error(err))
		return err
	}

	durationMS := g.clock.Now().Sub(start).Milliseconds()
	if err := g.snapshots.FinalizeExecution(ctx, g.db, execution.ID, snapshotdomain.ExecutionStatusSuccess, durationMS); err != nil {
		snapMetrics.IncRun(string(snapshotdomain.ExecutionStatusFailed))
		log.Error("finalize successful execution", zap.Error(err))
		return fmt.Errorf("finalize execution: %w", err)
	}

	snapMetrics.IncRun(string(snapshotdomain.ExecutionStatusSuccess))
	snapMetrics.ObserveRunDuration(g.clock.Now().Sub(start))

	purged, err := g.snapshots.EnforceRetention(ctx, g.db, g.cfg.RetentionLimit)
	if err != nil {
		log.Warn("retention enforcement failed", zap.Error(err))
		return fmt.Errorf("enforce retention: %w", err)
	}
	if purged > 0 {
		snapMetrics.AddRetentionPurged(purged)
		log.Info("retention purged snapshots", zap.Int("purged", purged))
	}

	return nil
}

// generateMetrics writes the whole metric batch in one transaction so a
// mid-run failure never leaves a partial batch committed next to a
// running-status execution.
func (g *Generator) generateMetrics(ctx context.Context, execution *snapshotdomain.SnapshotExecution) error {
	facilities, err := g.facilities.ListActive(ctx, g.db)
	if err != nil {
		return fmt.Errorf("load active facilities: %w", err)
	}

	statuses, err := g.facilities.ListHVACStatuses(ctx, g.db)
	if err != nil {
		return fmt.Errorf("load hvac statuses: %w", err)
	}
	if len(statuses) == 0 {
		return ErrNoHVACStatuses
	}

	// Zero active facilities is still a valid, empty snapshot.
	if len(facilities) == 0 {
		return nil
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recordedAt := g.clock.Now()
		for _, facility := range facilities {
			metric := g.buildMetric(execution.ID, facility, statuses, recordedAt)
			if err := g.snapshots.InsertMetric(ctx, tx, metric); err != nil {
				if db.IsForeignKeyErr(err) {
					return fmt.Errorf("insert metric for facility %s: %w: %v", facility.ID, ErrStaleReference, err)
				}
				return fmt.Errorf("insert metric for facility %s: %w", facility.ID, err)
			}
		}
		return nil
	})
}

func (g *Generator) buildMetric(
	snapshotID snowflake.ID,
	facility facilitydomain.Facility,
	statuses []facilitydomain.HVACStatus,
	recordedAt time.Time,
) *snapshotdomain.FacilityMetric {
	low, high := occupancyBounds(facility.Capacity)
	status := statuses[g.rng.Intn(len(statuses))]

	return &snapshotdomain.FacilityMetric{
		SnapshotID:   snapshotID,
		FacilityID:   facility.ID,
		HVACStatusID: status.ID,
		Occupancy:    low + g.rng.Intn(high-low+1),
		EnergyKWH:    energyKWHMin + g.rng.Float64()*(energyKWHMax-energyKWHMin),
		WaterLiters:  waterLitersMin + g.rng.Float64()*(waterLitersMax-waterLitersMin),
		OpenTickets:  g.rng.Intn(openTicketsMax + 1),
		RecordedAt:   recordedAt,
	}
}

// occupancyBounds truncates toward zero, matching the documented
// [floor(0.4*capacity), floor(0.9*capacity)] range semantics.
func occupancyBounds(capacity int) (int, int) {
	low := int(occupancyLowFactor * float64(capacity))
	high := int(occupancyHighFactor * float64(capacity))
	if high < low {
		high = low
	}
	return low, high
}
