package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// AuditFilter narrows the audit projection. Unknown actors or departments
// simply produce an empty result.
type AuditFilter struct {
	ActorID      *string
	DepartmentID *string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// AuditEntry is one status event annotated with the department of the
// grievance it belongs to, for department-scoped oversight queries.
type AuditEntry struct {
	Event        domain.StatusEvent
	DepartmentID string
}

// AuditRepository is the read-only projection over status events across all
// grievances. It never writes; the transition engine owns the append path.
type AuditRepository interface {
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds the postgres-backed projection.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	query := `
        SELECT e.id, e.grievance_id, e.actor_id, e.actor_role, e.action, e.note, e.occurred_at, g.department_id
        FROM status_events e
        JOIN grievances g ON g.id = e.grievance_id
        WHERE 1=1`
	args := []any{}

	if filter.ActorID != nil {
		args = append(args, *filter.ActorID)
		query += argClause(" AND e.actor_id=$%d", len(args))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		query += argClause(" AND g.department_id=$%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += argClause(" AND e.occurred_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += argClause(" AND e.occurred_at <= $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query += argClause(" ORDER BY e.occurred_at ASC, e.id ASC LIMIT $%d", len(args)-1)
	query += argClause(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		if err := rows.Scan(
			&entry.Event.ID,
			&entry.Event.GrievanceID,
			&entry.Event.ActorID,
			&entry.Event.ActorRole,
			&entry.Event.Action,
			&entry.Event.Note,
			&entry.Event.OccurredAt,
			&entry.DepartmentID,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func argClause(format string, n int) string {
	return fmt.Sprintf(format, n)
}

// MemoryAuditRepository projects audit entries out of a memory grievance
// store; it shares the store rather than duplicating events.
type MemoryAuditRepository struct {
	grievances *MemoryGrievanceRepository
}

// NewMemoryAuditRepository builds the in-memory projection.
func NewMemoryAuditRepository(grievances *MemoryGrievanceRepository) *MemoryAuditRepository {
	return &MemoryAuditRepository{grievances: grievances}
}

func (r *MemoryAuditRepository) List(_ context.Context, filter AuditFilter) ([]AuditEntry, error) {
	r.grievances.mu.RLock()
	defer r.grievances.mu.RUnlock()

	entries := make([]AuditEntry, 0)
	for _, g := range r.grievances.grievances {
		if filter.DepartmentID != nil && g.DepartmentID != *filter.DepartmentID {
			continue
		}
		for _, ev := range g.History {
			if filter.ActorID != nil && ev.ActorID != *filter.ActorID {
				continue
			}
			if filter.From != nil && ev.OccurredAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && ev.OccurredAt.After(*filter.To) {
				continue
			}
			entries = append(entries, AuditEntry{Event: ev, DepartmentID: g.DepartmentID})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Event.OccurredAt.Equal(entries[j].Event.OccurredAt) {
			return entries[i].Event.ID < entries[j].Event.ID
		}
		return entries[i].Event.OccurredAt.Before(entries[j].Event.OccurredAt)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []AuditEntry{}, nil
	}
	entries = entries[offset:]
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
