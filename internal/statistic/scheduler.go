package statistic

import (
	"context"
	"errors"
	"sync"
	"time"

	"nltrack/internal/models"
	"nltrack/internal/providers"
	"nltrack/internal/services"
	"nltrack/internal/statistic/interfaces"
	"nltrack/internal/structures"
)

// Scheduler periodically recompacts the last complete days. Runs are serialized so one
// process never writes the same date twice at once.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	aggregation services.AggregationServiceInterface
	archive     *SnapshotArchive
	cache       providers.CacheProviderInterface
	opsMu       sync.Mutex
	stop        chan struct{}
	done        chan struct{}
	now         func() time.Time
}

func (s *Scheduler) Init() {
	interval := s.config.Aggregation.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				if err := s.RunOnce(ctx); err != nil {
					s.logger.Errorf(providers.TypeAggregation, "Scheduled aggregation finished with errors: %s", err)
				}
				cancel()
			}
		}
	}()

	s.logger.Infof(providers.TypeAggregation, "Aggregation scheduled every %s", interval)
}

func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}

// RunOnce regenerates each of the last lookbackDays complete days. A failing date is
// logged and reported but does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	days := s.config.Aggregation.LookbackDays
	if days <= 0 {
		days = 1
	}

	today, _ := services.DayBounds(s.now(), s.aggregation.Location())
	var errs []error
	for i := days; i >= 1; i-- {
		date := today.AddDate(0, 0, -i)
		if err := s.GenerateAndArchive(ctx, date); err != nil {
			s.logger.Errorf(providers.TypeAggregation, "Snapshot %s failed: %s", models.SnapshotDate(date), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) GenerateAndArchive(ctx context.Context, date time.Time) error {
	rows, err := s.aggregation.GenerateDailySnapshot(ctx, date)
	if err != nil {
		return err
	}
	// cached stats may predate the replaced rows
	s.cache.Clear()
	if err = s.archive.Save(models.SnapshotDate(date), rows); err != nil {
		s.logger.Warnf(providers.TypeAggregation, "Snapshot %s not archived: %s", models.SnapshotDate(date), err)
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, aggregation services.AggregationServiceInterface, archive *SnapshotArchive, cache providers.CacheProviderInterface) interfaces.SchedulerInterface {
	return newScheduler(config, logger, aggregation, archive, cache, time.Now)
}

func newScheduler(config *structures.Config, logger providers.Logger, aggregation services.AggregationServiceInterface, archive *SnapshotArchive, cache providers.CacheProviderInterface, now func() time.Time) *Scheduler {
	return &Scheduler{
		config:      config,
		logger:      logger,
		aggregation: aggregation,
		archive:     archive,
		cache:       cache,
		now:         now,
	}
}
