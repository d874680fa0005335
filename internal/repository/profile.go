package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/rprx-coach/backend/internal/models"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

// ProfileUpdate описывает редактируемую пользователем часть профиля. Геймификационные
// счетчики и баллы обновляются отдельными атомарными операциями.
type ProfileUpdate struct {
	MonthlyIncomeCents       int64
	MonthlyDebtPaymentsCents int64
	MonthlyHousingCents      int64
	MonthlyInsuranceCents    int64
	MonthlyLivingCents       int64
	EmergencyFundCents       int64

	RetirementBalanceCents       int64
	MonthlyContributionCents     int64
	DesiredRetirementIncomeCents int64
	YearsToRetirement            int
	EmployerMatch                models.MatchCapture

	HasHealthInsurance     bool
	HasLifeInsurance       bool
	HasDisabilityInsurance bool
	HasLongTermCare        bool
	Dependents             int

	FilingStatus          *string
	TaxAdvantagedAccounts []string

	MoneyWorry          *models.WorryFrequency
	EmergencyConfidence *models.ConfidenceLevel
	SenseOfControl      *models.ControlLevel
}

const profileColumns = `user_id,
	        monthly_income_cents, monthly_debt_payments_cents, monthly_housing_cents,
	        monthly_insurance_cents, monthly_living_cents, emergency_fund_cents,
	        retirement_balance_cents, monthly_contribution_cents, desired_retirement_income_cents,
	        years_to_retirement, employer_match,
	        has_health_insurance, has_life_insurance, has_disability_insurance, has_long_term_care,
	        dependents, filing_status, tax_advantaged_accounts,
	        money_worry, emergency_confidence, sense_of_control,
	        current_streak, longest_streak, last_active_date, total_points_earned,
	        rprx_total, rprx_river, rprx_lake, rprx_rainbow, rprx_tax, rprx_stress,
	        tier, scored_at, created_at, updated_at`

// NewProfileRepository создает репозиторий профилей.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get возвращает профиль пользователя.
func (r *ProfileRepository) Get(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles
		 WHERE user_id = $1`,
		userID,
	)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, ErrNotFound
		}
		return profile, err
	}

	return profile, nil
}

// Update перезаписывает редактируемые поля профиля.
func (r *ProfileRepository) Update(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (models.Profile, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE profiles
		 SET monthly_income_cents = $2,
		     monthly_debt_payments_cents = $3,
		     monthly_housing_cents = $4,
		     monthly_insurance_cents = $5,
		     monthly_living_cents = $6,
		     emergency_fund_cents = $7,
		     retirement_balance_cents = $8,
		     monthly_contribution_cents = $9,
		     desired_retirement_income_cents = $10,
		     years_to_retirement = $11,
		     employer_match = $12,
		     has_health_insurance = $13,
		     has_life_insurance = $14,
		     has_disability_insurance = $15,
		     has_long_term_care = $16,
		     dependents = $17,
		     filing_status = $18,
		     tax_advantaged_accounts = $19,
		     money_worry = $20,
		     emergency_confidence = $21,
		     sense_of_control = $22,
		     updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+profileColumns,
		userID,
		update.MonthlyIncomeCents, update.MonthlyDebtPaymentsCents, update.MonthlyHousingCents,
		update.MonthlyInsuranceCents, update.MonthlyLivingCents, update.EmergencyFundCents,
		update.RetirementBalanceCents, update.MonthlyContributionCents, update.DesiredRetirementIncomeCents,
		update.YearsToRetirement, update.EmployerMatch,
		update.HasHealthInsurance, update.HasLifeInsurance, update.HasDisabilityInsurance, update.HasLongTermCare,
		update.Dependents, update.FilingStatus, update.TaxAdvantagedAccounts,
		update.MoneyWorry, update.EmergencyConfidence, update.SenseOfControl,
	)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, ErrNotFound
		}
		return profile, err
	}

	return profile, nil
}

// AddPoints атомарно увеличивает общий счет очков пользователя.
func (r *ProfileRepository) AddPoints(ctx context.Context, userID uuid.UUID, points int) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE profiles
		 SET total_points_earned = total_points_earned + $2,
		     updated_at = NOW()
		 WHERE user_id = $1`,
		userID, points,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateStreak записывает новый streak одним запросом; longest_streak
// поднимается через GREATEST, чтобы параллельная запись не потеряла максимум.
func (r *ProfileRepository) UpdateStreak(ctx context.Context, userID uuid.UUID, current int, lastActive time.Time) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE profiles
		 SET current_streak = $2,
		     longest_streak = GREATEST(longest_streak, $2),
		     last_active_date = $3,
		     updated_at = NOW()
		 WHERE user_id = $1`,
		userID, current, lastActive,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateScore сохраняет пересчитанный RPRx-балл и тир.
func (r *ProfileRepository) UpdateScore(ctx context.Context, userID uuid.UUID, result models.RPRxScoreResult) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE profiles
		 SET rprx_total = $2,
		     rprx_river = $3,
		     rprx_lake = $4,
		     rprx_rainbow = $5,
		     rprx_tax = $6,
		     rprx_stress = $7,
		     tier = $8,
		     scored_at = NOW(),
		     updated_at = NOW()
		 WHERE user_id = $1`,
		userID, result.Total, result.River, result.Lake, result.Rainbow, result.Tax, result.Stress, result.Grade,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	var filingStatus *string
	var worry, confidence, control *string

	err := row.Scan(
		&p.UserID,
		&p.MonthlyIncomeCents, &p.MonthlyDebtPaymentsCents, &p.MonthlyHousingCents,
		&p.MonthlyInsuranceCents, &p.MonthlyLivingCents, &p.EmergencyFundCents,
		&p.RetirementBalanceCents, &p.MonthlyContributionCents, &p.DesiredRetirementIncomeCents,
		&p.YearsToRetirement, &p.EmployerMatch,
		&p.HasHealthInsurance, &p.HasLifeInsurance, &p.HasDisabilityInsurance, &p.HasLongTermCare,
		&p.Dependents, &filingStatus, &p.TaxAdvantagedAccounts,
		&worry, &confidence, &control,
		&p.CurrentStreak, &p.LongestStreak, &p.LastActiveDate, &p.TotalPointsEarned,
		&p.RPRxTotal, &p.RPRxRiver, &p.RPRxLake, &p.RPRxRainbow, &p.RPRxTax, &p.RPRxStress,
		&p.Tier, &p.ScoredAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return models.Profile{}, err
	}

	p.FilingStatus = filingStatus
	if worry != nil {
		value := models.WorryFrequency(*worry)
		p.MoneyWorry = &value
	}
	if confidence != nil {
		value := models.ConfidenceLevel(*confidence)
		p.EmergencyConfidence = &value
	}
	if control != nil {
		value := models.ControlLevel(*control)
		p.SenseOfControl = &value
	}

	return p, nil
}
