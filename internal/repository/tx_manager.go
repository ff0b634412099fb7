package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// NewRepositories собирает набор pgx-репозиториев поверх соединения или транзакции
func NewRepositories(q base.Querier) Repositories {
	return Repositories{
		WorkWindows: NewWorkWindowRepository(q),
		Physicians:  NewPhysicianRepository(q),
		Patients:    NewPatientRepository(q),
		Schedules:   NewDailyScheduleRepository(q),
		Slots:       NewTimeSlotRepository(q),
		Archive:     NewArchivedScheduleRepository(q),
	}
}

type PgTxManager struct {
	db     base.DB
	logger *zap.Logger
}

func NewTxManager(db base.DB, logger *zap.Logger) *PgTxManager {
	return &PgTxManager{db: db, logger: logger}
}

// WithTx выполняет fn в транзакции; при ошибке или панике изменения откатываются
func (m *PgTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (err error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				m.logger.Warn("Failed to rollback tx", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
