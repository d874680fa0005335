package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/rprx-coach/backend/internal/models"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository создает репозиторий журнала активности.
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert добавляет запись в журнал. Журнал append-only: обновлений и
// удалений у этого репозитория нет.
func (r *ActivityRepository) Insert(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO activity_log (user_id, activity_type, points_earned, context)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, activity_type, points_earned, context, created_at`,
		entry.UserID, entry.Type, entry.PointsEarned, entry.Context,
	).Scan(&entry.ID, &entry.UserID, &entry.Type, &entry.PointsEarned, &entry.Context, &entry.CreatedAt)
	if err != nil {
		return models.ActivityLogEntry{}, err
	}

	return entry, nil
}

// CountByType возвращает число записей заданного типа у пользователя.
func (r *ActivityRepository) CountByType(ctx context.Context, userID uuid.UUID, activityType models.ActivityType) (int, error) {
	var count int

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM activity_log
		 WHERE user_id = $1 AND activity_type = $2`,
		userID, activityType,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ListByUser возвращает страницу журнала от новых записей к старым.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, activity_type, points_earned, context, created_at
		 FROM activity_log
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.ActivityLogEntry, 0)
	for rows.Next() {
		var entry models.ActivityLogEntry

		err := rows.Scan(&entry.ID, &entry.UserID, &entry.Type, &entry.PointsEarned, &entry.Context, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
