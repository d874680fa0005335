package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/rprx-coach/backend/internal/models"
)

type BadgeRepository struct {
	db *pgxpool.Pool
}

// NewBadgeRepository создает репозиторий бейджей.
func NewBadgeRepository(db *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// ListActiveByTriggers возвращает активные определения бейджей с заданными триггерами.
func (r *BadgeRepository) ListActiveByTriggers(ctx context.Context, triggers []models.TriggerType) ([]models.BadgeDefinition, error) {
	if len(triggers) == 0 {
		return []models.BadgeDefinition{}, nil
	}

	values := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		values = append(values, string(trigger))
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, trigger_type, trigger_value, points, is_active
		 FROM badge_definitions
		 WHERE is_active AND trigger_type = ANY($1)
		 ORDER BY created_at`,
		values,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]models.BadgeDefinition, 0)
	for rows.Next() {
		var badge models.BadgeDefinition

		err := rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.TriggerType, &badge.TriggerValue, &badge.Points, &badge.IsActive)
		if err != nil {
			return nil, err
		}

		badges = append(badges, badge)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return badges, nil
}

// EarnedBadgeIDs возвращает множество бейджей, уже выданных пользователю.
func (r *BadgeRepository) EarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT badge_id FROM user_badges WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earned := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var badgeID uuid.UUID
		if err := rows.Scan(&badgeID); err != nil {
			return nil, err
		}
		earned[badgeID] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return earned, nil
}

// Award выдает бейдж не более одного раза. Конфликт вставки означает, что
// бейдж уже выдан, и возвращается как awarded=false, а не как ошибка.
func (r *BadgeRepository) Award(ctx context.Context, userID, badgeID uuid.UUID) (models.UserBadge, bool, error) {
	var badge models.UserBadge

	err := r.db.QueryRow(ctx,
		`INSERT INTO user_badges (user_id, badge_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, badge_id) DO NOTHING
		 RETURNING user_id, badge_id, earned_at`,
		userID, badgeID,
	).Scan(&badge.UserID, &badge.BadgeID, &badge.EarnedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return badge, false, nil
		}
		return badge, false, err
	}

	return badge, true, nil
}

// ListEarned возвращает выданные пользователю бейджи вместе с определениями.
func (r *BadgeRepository) ListEarned(ctx context.Context, userID uuid.UUID) ([]models.AwardedBadge, error) {
	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.name, b.description, b.trigger_type, b.trigger_value, b.points, b.is_active, ub.earned_at
		 FROM user_badges ub
		 JOIN badge_definitions b ON b.id = ub.badge_id
		 WHERE ub.user_id = $1
		 ORDER BY ub.earned_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	awarded := make([]models.AwardedBadge, 0)
	for rows.Next() {
		var item models.AwardedBadge

		err := rows.Scan(
			&item.Badge.ID, &item.Badge.Name, &item.Badge.Description,
			&item.Badge.TriggerType, &item.Badge.TriggerValue,
			&item.Badge.Points, &item.Badge.IsActive, &item.EarnedAt,
		)
		if err != nil {
			return nil, err
		}

		awarded = append(awarded, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return awarded, nil
}
