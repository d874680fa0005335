package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/rprx-coach/backend/internal/models"
)

type StrategyRepository struct {
	db *pgxpool.Pool
}

const strategyColumns = `id, user_id, horseman, title, description, status, estimated_impact,
	        activated_at, completed_at, created_at`

// NewStrategyRepository создает репозиторий стратегий.
func NewStrategyRepository(db *pgxpool.Pool) *StrategyRepository {
	return &StrategyRepository{db: db}
}

// CreateBatch сохраняет предложенные стратегии одной транзакцией.
func (r *StrategyRepository) CreateBatch(ctx context.Context, userID uuid.UUID, strategies []models.Strategy) ([]models.Strategy, error) {
	if len(strategies) == 0 {
		return []models.Strategy{}, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	created := make([]models.Strategy, 0, len(strategies))
	for _, strategy := range strategies {
		var saved models.Strategy

		err = tx.QueryRow(ctx,
			`INSERT INTO strategies (user_id, horseman, title, description, status, estimated_impact)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+strategyColumns,
			userID, strategy.Horseman, strategy.Title, strategy.Description, models.StrategyStatusSuggested, strategy.EstimatedImpact,
		).Scan(
			&saved.ID, &saved.UserID, &saved.Horseman, &saved.Title, &saved.Description,
			&saved.Status, &saved.EstimatedImpact, &saved.ActivatedAt, &saved.CompletedAt, &saved.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		created = append(created, saved)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}

// ListByUser возвращает стратегии пользователя.
func (r *StrategyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Strategy, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+strategyColumns+`
		 FROM strategies
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	strategies := make([]models.Strategy, 0)
	for rows.Next() {
		var strategy models.Strategy

		err := rows.Scan(
			&strategy.ID, &strategy.UserID, &strategy.Horseman, &strategy.Title, &strategy.Description,
			&strategy.Status, &strategy.EstimatedImpact, &strategy.ActivatedAt, &strategy.CompletedAt, &strategy.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		strategies = append(strategies, strategy)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return strategies, nil
}

// Activate переводит предложенную стратегию в активную.
func (r *StrategyRepository) Activate(ctx context.Context, userID, strategyID uuid.UUID) (models.Strategy, error) {
	return r.updateStatus(ctx, userID, strategyID, models.StrategyStatusSuggested, models.StrategyStatusActive,
		`activated_at = NOW()`)
}

// Complete переводит активную стратегию в завершенную.
func (r *StrategyRepository) Complete(ctx context.Context, userID, strategyID uuid.UUID) (models.Strategy, error) {
	return r.updateStatus(ctx, userID, strategyID, models.StrategyStatusActive, models.StrategyStatusCompleted,
		`completed_at = NOW()`)
}

func (r *StrategyRepository) updateStatus(ctx context.Context, userID, strategyID uuid.UUID, from, to models.StrategyStatus, stampColumn string) (models.Strategy, error) {
	var strategy models.Strategy

	err := r.db.QueryRow(ctx,
		`UPDATE strategies
		 SET status = $4, `+stampColumn+`
		 WHERE id = $1 AND user_id = $2 AND status = $3
		 RETURNING `+strategyColumns,
		strategyID, userID, from, to,
	).Scan(
		&strategy.ID, &strategy.UserID, &strategy.Horseman, &strategy.Title, &strategy.Description,
		&strategy.Status, &strategy.EstimatedImpact, &strategy.ActivatedAt, &strategy.CompletedAt, &strategy.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Либо стратегии нет, либо она не в ожидаемом статусе.
			if _, getErr := r.getByID(ctx, userID, strategyID); getErr == nil {
				return strategy, ErrInvalid
			}
			return strategy, ErrNotFound
		}
		return strategy, err
	}

	return strategy, nil
}

func (r *StrategyRepository) getByID(ctx context.Context, userID, strategyID uuid.UUID) (models.Strategy, error) {
	var strategy models.Strategy

	err := r.db.QueryRow(ctx,
		`SELECT `+strategyColumns+`
		 FROM strategies
		 WHERE id = $1 AND user_id = $2`,
		strategyID, userID,
	).Scan(
		&strategy.ID, &strategy.UserID, &strategy.Horseman, &strategy.Title, &strategy.Description,
		&strategy.Status, &strategy.EstimatedImpact, &strategy.ActivatedAt, &strategy.CompletedAt, &strategy.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return strategy, ErrNotFound
		}
		return strategy, err
	}

	return strategy, nil
}

// CountCompletedByHorseman возвращает число завершенных стратегий всадника.
func (r *StrategyRepository) CountCompletedByHorseman(ctx context.Context, userID uuid.UUID, horseman models.Horseman) (int, error) {
	var count int

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM strategies
		 WHERE user_id = $1 AND horseman = $2 AND status = $3`,
		userID, horseman, models.StrategyStatusCompleted,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CompletedHorsemen возвращает всадников, по которым есть завершенные стратегии.
func (r *StrategyRepository) CompletedHorsemen(ctx context.Context, userID uuid.UUID) ([]models.Horseman, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT horseman
		 FROM strategies
		 WHERE user_id = $1 AND status = $2`,
		userID, models.StrategyStatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	horsemen := make([]models.Horseman, 0)
	for rows.Next() {
		var horseman models.Horseman
		if err := rows.Scan(&horseman); err != nil {
			return nil, err
		}
		horsemen = append(horsemen, horseman)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return horsemen, nil
}

// ActivatedImpacts возвращает тексты оценок эффекта активированных и
// завершенных стратегий для подсчета накопленной экономии.
func (r *StrategyRepository) ActivatedImpacts(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT estimated_impact
		 FROM strategies
		 WHERE user_id = $1 AND status IN ($2, $3)`,
		userID, models.StrategyStatusActive, models.StrategyStatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	impacts := make([]string, 0)
	for rows.Next() {
		var impact string
		if err := rows.Scan(&impact); err != nil {
			return nil, err
		}
		impacts = append(impacts, impact)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return impacts, nil
}
