package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/lock"
	"github.com/Freeeeeet/clinic_scheduler/internal/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job фоновая задача планировщика
type Job struct {
	Name string
	Spec string // cron-выражение, 5 полей
	Run  func(ctx context.Context) error
}

// Scheduler управляет фоновыми задачами. Каждый запуск защищён блокировкой,
// поэтому при нескольких экземплярах сервиса задача выполняется один раз.
type Scheduler struct {
	jobs    []Job
	locker  lock.Locker
	lockTTL time.Duration
	loc     *time.Location
	metrics *metrics.SchedulerMetrics
	logger  *zap.Logger

	cron   *cron.Cron
	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// MinLockTTL нижняя граница TTL блокировки задачи
const MinLockTTL = time.Second

// NewScheduler создаёт новый планировщик. Cron-выражения считаются в часовом поясе loc.
func NewScheduler(jobs []Job, locker lock.Locker, lockTTL time.Duration, loc *time.Location, m *metrics.SchedulerMetrics, logger *zap.Logger) *Scheduler {
	if lockTTL < MinLockTTL {
		lockTTL = MinLockTTL
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		jobs:    jobs,
		locker:  locker,
		lockTTL: lockTTL,
		loc:     loc,
		metrics: m,
		logger:  logger,
	}
}

// Start регистрирует задачи и сразу выполняет каждую по одному разу
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Int("jobs", len(s.jobs)),
		zap.String("timezone", s.loc.String()))

	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.cron = cron.New(cron.WithLocation(s.loc))

	for _, job := range s.jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Spec, func() { s.RunOnce(s.runCtx, job) }); err != nil {
			s.logger.Warn("Invalid cron spec, falling back to @daily",
				zap.String("job", job.Name),
				zap.String("spec", job.Spec),
				zap.Error(err))
			_, _ = s.cron.AddFunc("@daily", func() { s.RunOnce(s.runCtx, job) })
		}

		// Первый запуск сразу при старте
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.RunOnce(s.runCtx, job)
		}()
	}

	s.cron.Start()
}

// Stop останавливает cron и ждёт завершения выполняющихся задач
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	if s.cancel != nil {
		s.cancel()
	}
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.wg.Wait()
}

// RunOnce выполняет задачу под блокировкой; занятая блокировка значит, что задачу уже выполняет другой экземпляр
func (s *Scheduler) RunOnce(ctx context.Context, job Job) {
	acquired, token, err := s.locker.TryLock(ctx, "job:"+job.Name, s.lockTTL)
	if err != nil {
		s.logger.Warn("Job lock attempt failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Info("Job lock not acquired, another instance is running", zap.String("job", job.Name))
		return
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), "job:"+job.Name, token); err != nil {
			s.logger.Warn("Failed to release job lock", zap.String("job", job.Name), zap.Error(err))
		}
	}()

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go s.refreshLock(refreshCtx, job.Name, token)

	started := time.Now()
	err = job.Run(ctx)
	elapsed := time.Since(started)
	s.metrics.ObserveJob(job.Name, elapsed)

	if err != nil {
		s.logger.Error("Job failed", zap.String("job", job.Name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return
	}
	s.logger.Debug("Job completed", zap.String("job", job.Name), zap.Duration("elapsed", elapsed))
}

// refreshLock продлевает блокировку каждые пол-TTL, пока задача выполняется
func (s *Scheduler) refreshLock(ctx context.Context, name, token string) {
	ticker := time.NewTicker(s.lockTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.locker.Refresh(ctx, "job:"+name, token, s.lockTTL); err != nil {
				s.logger.Warn("Failed to refresh job lock", zap.String("job", name), zap.Error(err))
			}
		}
	}
}
