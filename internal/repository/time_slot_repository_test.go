package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestTimeSlotRepo_Reserve(t *testing.T) {
	mock := newMock(t)
	repo := NewTimeSlotRepository(mock)
	slotID, patientID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE time_slots\s+SET status = 'reserved', patient_id = \$2\s+WHERE id = \$1 AND status = 'free'`).
		WithArgs(slotID, patientID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE time_slots`).
		WithArgs(slotID, patientID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.Reserve(context.Background(), slotID, patientID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Reserve(context.Background(), slotID, patientID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTimeSlotRepo_ReleaseChecksOwner(t *testing.T) {
	mock := newMock(t)
	repo := NewTimeSlotRepository(mock)
	slotID, patientID := uuid.New(), uuid.New()

	mock.ExpectExec(`WHERE id = \$1 AND status = 'reserved' AND patient_id = \$2`).
		WithArgs(slotID, patientID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.Release(context.Background(), slotID, patientID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTimeSlotRepo_SetStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewTimeSlotRepository(mock)
	slotID := uuid.New()

	mock.ExpectExec(`UPDATE time_slots SET status = \$2 WHERE id = \$1`).
		WithArgs(slotID, model.SlotStatusInactive).
		WillReturnError(errors.New("connection reset"))

	err := repo.SetStatus(context.Background(), slotID, model.SlotStatusInactive)
	assert.ErrorContains(t, err, "set slot status")
}

func TestTimeSlotRepo_MarkPassedBeforeUsesWallClock(t *testing.T) {
	mock := newMock(t)
	repo := NewTimeSlotRepository(mock)
	now := time.Date(2026, 3, 2, 12, 30, 0, 0, time.FixedZone("MSK", 3*60*60))

	mock.ExpectExec(`ds\.date \+ ts\.start_time < \$1::timestamp`).
		WithArgs("2026-03-02 12:30:00").
		WillReturnResult(pgxmock.NewResult("UPDATE", 7))

	n, err := repo.MarkPassedBefore(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestTimeSlotRepo_CreateBatchEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewTimeSlotRepository(mock)

	assert.NoError(t, repo.CreateBatch(context.Background(), nil))
}
