package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_scheduler/internal/model"
	"github.com/Freeeeeet/clinic_scheduler/internal/repository/base"
	"github.com/google/uuid"
)

type PatientRepo struct {
	*base.Repository
}

func NewPatientRepository(q base.Querier) *PatientRepo {
	return &PatientRepo{Repository: base.NewRepository(q)}
}

const patientColumns = `id, account_id, first_name, last_name, email, phone, telegram_id, created_at`

func scanPatient(row interface{ Scan(dest ...any) error }) (*model.Patient, error) {
	var p model.Patient
	err := row.Scan(&p.ID, &p.AccountID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.TelegramID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepo) getOne(ctx context.Context, where string, arg any) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE ` + where + ` = $1`
	p, err := scanPatient(r.QueryRow(ctx, query, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// GetByID получает пациента по ID
func (r *PatientRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := r.getOne(ctx, "id", id)
	if err != nil {
		return nil, fmt.Errorf("get patient by id: %w", err)
	}
	return p, nil
}

// GetByAccountID получает пациента по ID учётной записи
func (r *PatientRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*model.Patient, error) {
	p, err := r.getOne(ctx, "account_id", accountID)
	if err != nil {
		return nil, fmt.Errorf("get patient by account id: %w", err)
	}
	return p, nil
}

// GetByTelegramID получает пациента по привязанному Telegram ID
func (r *PatientRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Patient, error) {
	p, err := r.getOne(ctx, "telegram_id", telegramID)
	if err != nil {
		return nil, fmt.Errorf("get patient by telegram id: %w", err)
	}
	return p, nil
}

// GetByIDs получает пациентов пачкой, ключ карты ID пациента
func (r *PatientRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Patient, error) {
	result := make(map[uuid.UUID]*model.Patient, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = ANY($1)`
	rows, err := r.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get patients by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

// LinkTelegram привязывает чат бота к пациенту; false если учётная запись не найдена
func (r *PatientRepo) LinkTelegram(ctx context.Context, accountID uuid.UUID, telegramID int64) (bool, error) {
	// один чат привязан не более чем к одному пациенту
	if _, err := r.ExecAffected(ctx,
		`UPDATE patients SET telegram_id = NULL WHERE telegram_id = $1 AND account_id <> $2`,
		telegramID, accountID); err != nil {
		return false, fmt.Errorf("unlink telegram: %w", err)
	}

	n, err := r.ExecAffected(ctx,
		`UPDATE patients SET telegram_id = $1 WHERE account_id = $2`,
		telegramID, accountID)
	if err != nil {
		return false, fmt.Errorf("link telegram: %w", err)
	}
	return n > 0, nil
}
