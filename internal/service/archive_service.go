package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/metrics"
	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var archiveTracer = otel.Tracer("clinic_scheduler/archive")

// ArchiveResult сколько расписаний и слотов перенесено в архив
type ArchiveResult struct {
	Schedules int `json:"schedules"`
	Slots     int `json:"slots"`
}

type ArchiveService struct {
	repos   repository.Repositories
	tx      repository.TxManager
	metrics *metrics.SchedulerMetrics
	clock   func() time.Time
	logger  *zap.Logger
}

func NewArchiveService(
	repos repository.Repositories,
	tx repository.TxManager,
	m *metrics.SchedulerMetrics,
	clock func() time.Time,
	logger *zap.Logger,
) *ArchiveService {
	if clock == nil {
		clock = time.Now
	}
	return &ArchiveService{
		repos:   repos,
		tx:      tx,
		metrics: m,
		clock:   clock,
		logger:  logger,
	}
}

// ArchiveSchedules переносит в архив все расписания с датой раньше сегодняшней.
// Сегодняшние и будущие расписания не трогаются. Повторный запуск без
// подходящих расписаний ничего не делает.
func (s *ArchiveService) ArchiveSchedules(ctx context.Context) (*ArchiveResult, error) {
	ctx, span := archiveTracer.Start(ctx, "archive.run")
	defer span.End()

	now := s.clock()
	today := model.DateOf(now)

	var result ArchiveResult
	err := s.tx.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		schedules, err := repos.Schedules.ListBefore(ctx, today)
		if err != nil {
			return err
		}
		result, err = archiveAndDelete(ctx, repos, schedules, now)
		return err
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error("Failed to archive schedules", zap.Error(err))
		return nil, fmt.Errorf("archive schedules: %w", err)
	}

	span.SetAttributes(
		attribute.Int("schedules", result.Schedules),
		attribute.Int("slots", result.Slots),
	)
	s.metrics.AddArchived(result.Slots)
	s.logger.Info("Schedules archived",
		zap.String("before", today.Format(model.DateLayout)),
		zap.Int("schedules", result.Schedules),
		zap.Int("slots", result.Slots))
	return &result, nil
}

// ListArchived архивные записи врача
func (s *ArchiveService) ListArchived(ctx context.Context, physicianID uuid.UUID) ([]*model.ArchivedSchedule, error) {
	physician, err := s.repos.Physicians.GetByID(ctx, physicianID)
	if err != nil {
		return nil, fmt.Errorf("get physician: %w", err)
	}
	if physician == nil {
		return nil, ErrPhysicianNotFound
	}

	rows, err := s.repos.Archive.ListByPhysician(ctx, physicianID)
	if err != nil {
		return nil, fmt.Errorf("list archived: %w", err)
	}
	return rows, nil
}

// archiveAndDelete снимает архивную копию каждого слота и удаляет расписания вместе со слотами
func archiveAndDelete(ctx context.Context, repos repository.Repositories, schedules []*model.DailySchedule, now time.Time) (ArchiveResult, error) {
	var result ArchiveResult
	for _, schedule := range schedules {
		rows := make([]model.ArchivedSchedule, 0, len(schedule.Slots))
		for i := range schedule.Slots {
			rows = append(rows, model.ArchiveSlot(schedule, &schedule.Slots[i], now))
		}
		if err := repos.Archive.CreateBatch(ctx, rows); err != nil {
			return ArchiveResult{}, err
		}
		if err := repos.Schedules.Delete(ctx, schedule.ID); err != nil {
			return ArchiveResult{}, err
		}
		result.Schedules++
		result.Slots += len(rows)
	}
	return result, nil
}
