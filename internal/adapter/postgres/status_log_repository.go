package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
)

type statusLogRepository struct {
	db DB
}

func NewStatusLogRepository(db DB) interfaces.StatusLogRepository {
	return &statusLogRepository{db: db}
}

func (r *statusLogRepository) Append(ctx context.Context, entry *domain.StatusLog) error {
	query := `
		INSERT INTO order_status_log (order_id, from_status, to_status, role_id, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		entry.OrderID, entry.FromStatus.ID(), entry.ToStatus.ID(), int(entry.Role), entry.ChangedBy, entry.ChangedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to log status: %w", err)
	}
	return nil
}

func (r *statusLogRepository) History(ctx context.Context, orderID int) ([]*domain.StatusLog, error) {
	query := `
		SELECT id, order_id, from_status, to_status, role_id, changed_by, changed_at
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var logs []*domain.StatusLog
	for rows.Next() {
		var (
			entry    domain.StatusLog
			from, to int
			role     int
		)
		if err := rows.Scan(&entry.ID, &entry.OrderID, &from, &to, &role, &entry.ChangedBy, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		entry.FromStatus = domain.Status(from)
		entry.ToStatus = domain.Status(to)
		entry.Role = domain.Role(role)
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status history: %w", err)
	}

	return logs, nil
}
