package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Freeeeeet/clinic_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	id := uuid.New()

	action, got, err := ParseCallback(CallbackData("book", id))
	require.NoError(t, err)
	assert.Equal(t, "book", action)
	assert.Equal(t, id, got)

	for _, data := range []string{"", "book", "book:", "book:123"} {
		_, _, err := ParseCallback(data)
		assert.ErrorIs(t, err, ErrInvalidFormat, data)
	}
}

func TestErrorMessage(t *testing.T) {
	conflict := fmt.Errorf("%w: slot is reserved", service.ErrScheduleConflict)
	assert.Equal(t, "⚠️ Это время уже недоступно", ErrorMessage(conflict))
	assert.Equal(t, "❌ Время приёма не найдено", ErrorMessage(service.ErrSlotNotFound))
	assert.Contains(t, ErrorMessage(service.ErrPatientNotFound), "/link")
	assert.Equal(t, "❌ Произошла ошибка", ErrorMessage(errors.New("boom")))
}
