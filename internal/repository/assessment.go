package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/rprx-coach/backend/internal/models"
)

type AssessmentRepository struct {
	db *pgxpool.Pool
}

// NewAssessmentRepository создает репозиторий оценок.
func NewAssessmentRepository(db *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Create сохраняет оценку, core-ответы и deep-dive ответы одной транзакцией.
func (r *AssessmentRepository) Create(ctx context.Context, assessment models.Assessment, responses []models.Response, deepAnswers []models.DeepDiveAnswer) (models.Assessment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.Assessment{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var saved models.Assessment
	err = tx.QueryRow(ctx,
		`INSERT INTO assessments (user_id, interest_score, taxes_score, insurance_score, education_score, primary_horseman, cash_flow_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, user_id, interest_score, taxes_score, insurance_score, education_score, primary_horseman, cash_flow_status, created_at`,
		assessment.UserID,
		assessment.Scores.Interest, assessment.Scores.Taxes, assessment.Scores.Insurance, assessment.Scores.Education,
		assessment.PrimaryHorseman, assessment.CashFlowStatus,
	).Scan(
		&saved.ID, &saved.UserID,
		&saved.Scores.Interest, &saved.Scores.Taxes, &saved.Scores.Insurance, &saved.Scores.Education,
		&saved.PrimaryHorseman, &saved.CashFlowStatus, &saved.CreatedAt,
	)
	if err != nil {
		return models.Assessment{}, err
	}

	for _, response := range responses {
		_, err = tx.Exec(ctx,
			`INSERT INTO assessment_responses (id, assessment_id, question_id, value)
			 VALUES ($1, $2, $3, $4)`,
			uuid.New(), saved.ID, response.QuestionID, response.Value,
		)
		if err != nil {
			return models.Assessment{}, err
		}
	}

	for _, answer := range deepAnswers {
		_, err = tx.Exec(ctx,
			`INSERT INTO deep_dive_answers (id, assessment_id, question_id, horseman, value)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), saved.ID, answer.QuestionID, answer.Horseman, answer.Value,
		)
		if err != nil {
			return models.Assessment{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Assessment{}, err
	}

	return saved, nil
}

// GetLatest возвращает последнюю оценку пользователя.
func (r *AssessmentRepository) GetLatest(ctx context.Context, userID uuid.UUID) (models.Assessment, error) {
	var assessment models.Assessment

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, interest_score, taxes_score, insurance_score, education_score, primary_horseman, cash_flow_status, created_at
		 FROM assessments
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(
		&assessment.ID, &assessment.UserID,
		&assessment.Scores.Interest, &assessment.Scores.Taxes, &assessment.Scores.Insurance, &assessment.Scores.Education,
		&assessment.PrimaryHorseman, &assessment.CashFlowStatus, &assessment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assessment, ErrNotFound
		}
		return assessment, err
	}

	return assessment, nil
}

// HasCompleted сообщает, проходил ли пользователь deep dive по всаднику.
func (r *AssessmentRepository) HasCompleted(ctx context.Context, userID uuid.UUID, horseman models.Horseman) (bool, error) {
	var exists bool

	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1
			FROM deep_dive_answers d
			JOIN assessments a ON a.id = d.assessment_id
			WHERE a.user_id = $1 AND d.horseman = $2
		 )`,
		userID, horseman,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// FirstAnswerValue возвращает первый записанный deep-dive ответ по всаднику.
// Отсутствие ответа не считается ошибкой, возвращается пустая строка.
func (r *AssessmentRepository) FirstAnswerValue(ctx context.Context, userID uuid.UUID, horseman models.Horseman) (string, error) {
	var value string

	err := r.db.QueryRow(ctx,
		`SELECT d.value
		 FROM deep_dive_answers d
		 JOIN assessments a ON a.id = d.assessment_id
		 WHERE a.user_id = $1 AND d.horseman = $2
		 ORDER BY d.created_at, d.id
		 LIMIT 1`,
		userID, horseman,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	return value, nil
}
