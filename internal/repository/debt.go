package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/rprx-coach/backend/internal/models"
)

type DebtRepository struct {
	db *pgxpool.Pool
}

const debtColumns = `id, user_id, debt_type, name, original_balance_cents, current_balance_cents,
	        interest_rate, min_payment_cents, paid_off_at, created_at, updated_at`

// NewDebtRepository создает репозиторий долгов.
func NewDebtRepository(db *pgxpool.Pool) *DebtRepository {
	return &DebtRepository{db: db}
}

// Create сохраняет новый долг пользователя.
func (r *DebtRepository) Create(ctx context.Context, debt models.UserDebt) (models.UserDebt, error) {
	if debt.CurrentBalanceCents < 0 || debt.CurrentBalanceCents > debt.OriginalBalanceCents {
		return models.UserDebt{}, ErrInvalid
	}
	if debt.InterestRate < 0 || debt.MinPaymentCents < 0 {
		return models.UserDebt{}, ErrInvalid
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO user_debts (user_id, debt_type, name, original_balance_cents, current_balance_cents, interest_rate, min_payment_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+debtColumns,
		debt.UserID, debt.Type, debt.Name, debt.OriginalBalanceCents, debt.CurrentBalanceCents, debt.InterestRate, debt.MinPaymentCents,
	)

	return scanDebt(row)
}

// ListByUser возвращает все долги пользователя.
func (r *DebtRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserDebt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+debtColumns+`
		 FROM user_debts
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	debts := make([]models.UserDebt, 0)
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return debts, nil
}

// GetByID возвращает долг пользователя по идентификатору.
func (r *DebtRepository) GetByID(ctx context.Context, userID, debtID uuid.UUID) (models.UserDebt, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+debtColumns+`
		 FROM user_debts
		 WHERE id = $1 AND user_id = $2`,
		debtID, userID,
	)

	debt, err := scanDebt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return debt, ErrNotFound
		}
		return debt, err
	}

	return debt, nil
}

// Update применяет корректирующую правку долга. Это единственная операция,
// допустимая для уже выплаченного долга.
func (r *DebtRepository) Update(ctx context.Context, userID, debtID uuid.UUID, name string, debtType models.DebtType, originalCents, currentCents int64, rate float64, minPaymentCents int64) (models.UserDebt, error) {
	if currentCents < 0 || currentCents > originalCents || rate < 0 || minPaymentCents < 0 {
		return models.UserDebt{}, ErrInvalid
	}

	row := r.db.QueryRow(ctx,
		`UPDATE user_debts
		 SET name = $3,
		     debt_type = $4,
		     original_balance_cents = $5,
		     current_balance_cents = $6,
		     interest_rate = $7,
		     min_payment_cents = $8,
		     paid_off_at = CASE WHEN $6 > 0 THEN NULL ELSE COALESCE(paid_off_at, NOW()) END,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+debtColumns,
		debtID, userID, name, debtType, originalCents, currentCents, rate, minPaymentCents,
	)

	debt, err := scanDebt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return debt, ErrNotFound
		}
		return debt, err
	}

	return debt, nil
}

// LogPayment уменьшает баланс долга на сумму платежа. Баланс не уходит ниже
// нуля; при обнулении проставляется paid_off_at, после чего долг закрыт для
// платежей.
func (r *DebtRepository) LogPayment(ctx context.Context, userID, debtID uuid.UUID, amountCents int64) (models.UserDebt, error) {
	if amountCents <= 0 {
		return models.UserDebt{}, ErrInvalid
	}

	row := r.db.QueryRow(ctx,
		`UPDATE user_debts
		 SET current_balance_cents = GREATEST(current_balance_cents - $3, 0),
		     paid_off_at = CASE WHEN current_balance_cents - $3 <= 0 THEN NOW() ELSE NULL END,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND paid_off_at IS NULL
		 RETURNING `+debtColumns,
		debtID, userID, amountCents,
	)

	debt, err := scanDebt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Либо долга нет, либо он уже выплачен.
			if _, getErr := r.GetByID(ctx, userID, debtID); getErr == nil {
				return debt, ErrPaidOff
			}
			return debt, ErrNotFound
		}
		return debt, err
	}

	return debt, nil
}

// Delete удаляет долг пользователя.
func (r *DebtRepository) Delete(ctx context.Context, userID, debtID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM user_debts
		 WHERE id = $1 AND user_id = $2`,
		debtID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetFocus сохраняет выбранный пользователем фокусный долг поверх рекомендации.
func (r *DebtRepository) SetFocus(ctx context.Context, userID, debtID uuid.UUID) error {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM user_debts WHERE id = $1 AND user_id = $2
		 )`,
		debtID, userID,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO debt_focus (user_id, debt_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET debt_id = EXCLUDED.debt_id, updated_at = NOW()`,
		userID, debtID,
	)
	return err
}

// ClearFocus снимает пользовательский выбор фокусного долга.
func (r *DebtRepository) ClearFocus(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM debt_focus WHERE user_id = $1`,
		userID,
	)
	return err
}

// GetFocus возвращает выбранный пользователем фокусный долг, если он есть.
func (r *DebtRepository) GetFocus(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	var debtID uuid.UUID

	err := r.db.QueryRow(ctx,
		`SELECT debt_id FROM debt_focus WHERE user_id = $1`,
		userID,
	).Scan(&debtID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &debtID, nil
}

func scanDebt(row pgx.Row) (models.UserDebt, error) {
	var debt models.UserDebt

	err := row.Scan(
		&debt.ID, &debt.UserID, &debt.Type, &debt.Name,
		&debt.OriginalBalanceCents, &debt.CurrentBalanceCents,
		&debt.InterestRate, &debt.MinPaymentCents,
		&debt.PaidOffAt, &debt.CreatedAt, &debt.UpdatedAt,
	)
	if err != nil {
		return models.UserDebt{}, err
	}

	return debt, nil
}
