package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/rprx-coach/backend/internal/models"
)

type QuestionRepository struct {
	db *pgxpool.Pool
}

// NewQuestionRepository создает репозиторий вопросов оценки.
func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListCore возвращает core-вопросы, упорядоченные по индексу.
func (r *QuestionRepository) ListCore(ctx context.Context) ([]models.Question, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, question_text, question_type, order_index, options, horseman_weights, category
		 FROM questions
		 ORDER BY order_index, created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]models.Question, 0)
	for rows.Next() {
		var question models.Question
		var options, weights []byte

		err := rows.Scan(&question.ID, &question.Text, &question.Type, &question.OrderIndex, &options, &weights, &question.Category)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(options, &question.Options); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(weights, &question.HorsemanWeights); err != nil {
			return nil, err
		}

		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}

// GetByID возвращает core-вопрос по идентификатору.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (models.Question, error) {
	var question models.Question
	var options, weights []byte

	err := r.db.QueryRow(ctx,
		`SELECT id, question_text, question_type, order_index, options, horseman_weights, category
		 FROM questions
		 WHERE id = $1`,
		id,
	).Scan(&question.ID, &question.Text, &question.Type, &question.OrderIndex, &options, &weights, &question.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return question, ErrNotFound
		}
		return question, err
	}

	if err := json.Unmarshal(options, &question.Options); err != nil {
		return question, err
	}
	if err := json.Unmarshal(weights, &question.HorsemanWeights); err != nil {
		return question, err
	}

	return question, nil
}

// ListByHorseman возвращает deep-dive вопросы одного всадника по порядку.
func (r *QuestionRepository) ListByHorseman(ctx context.Context, horseman models.Horseman) ([]models.DeepDiveQuestion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, horseman, question_text, question_type, order_index, options
		 FROM deep_dive_questions
		 WHERE horseman = $1
		 ORDER BY order_index, created_at`,
		horseman,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]models.DeepDiveQuestion, 0)
	for rows.Next() {
		var question models.DeepDiveQuestion
		var options []byte

		err := rows.Scan(&question.ID, &question.Horseman, &question.Text, &question.Type, &question.OrderIndex, &options)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(options, &question.Options); err != nil {
			return nil, err
		}

		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}
