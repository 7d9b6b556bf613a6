package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// GrievanceFilter captures listing parameters for grievance queries.
type GrievanceFilter struct {
	RaisedBy     *string
	DepartmentID *string
	AssignedTo   *string
	Statuses     []domain.GrievanceStatus
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// EventAppend is the payload for the compare-and-append mutation. The
// engine precomputes the resulting status and assignment so the store stays
// a dumb, atomic writer.
type EventAppend struct {
	ExpectedVersion int
	Event           domain.StatusEvent
	NewStatus       domain.GrievanceStatus
	AssignedTo      *string
}

// GrievanceRepository encapsulates grievance persistence. AppendEvent is the
// only mutation entry point after Create; it must be atomic per grievance.
type GrievanceRepository interface {
	Create(ctx context.Context, grievance *domain.Grievance) error
	GetByID(ctx context.Context, id string) (*domain.Grievance, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]domain.Grievance, error)
	ListAssignedTo(ctx context.Context, actorID string) ([]domain.Grievance, error)
	ListWithFilter(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, error)
	AppendEvent(ctx context.Context, grievanceID string, ap EventAppend) (*domain.Grievance, error)
}

type grievanceRepository struct {
	pool *pgxpool.Pool
}

// NewGrievanceRepository instantiates the postgres-backed repository.
func NewGrievanceRepository(pool *pgxpool.Pool) GrievanceRepository {
	return &grievanceRepository{pool: pool}
}

func (r *grievanceRepository) Create(ctx context.Context, grievance *domain.Grievance) error {
	const query = `
        INSERT INTO grievances (title, description, raised_by, department_id, status, assigned_to, version)
        VALUES ($1,$2,$3,$4,$5,$6,0)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		grievance.Title,
		grievance.Description,
		grievance.RaisedBy,
		grievance.DepartmentID,
		grievance.Status,
		grievance.AssignedTo,
	).Scan(&grievance.ID, &grievance.CreatedAt)
}

func (r *grievanceRepository) GetByID(ctx context.Context, id string) (*domain.Grievance, error) {
	const query = `
        SELECT id, title, description, raised_by, department_id, status, assigned_to, version, created_at
        FROM grievances WHERE id=$1`
	var g domain.Grievance
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID,
		&g.Title,
		&g.Description,
		&g.RaisedBy,
		&g.DepartmentID,
		&g.Status,
		&g.AssignedTo,
		&g.Version,
		&g.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	history, err := r.listEvents(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	g.History = history
	return &g, nil
}

func (r *grievanceRepository) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Grievance, error) {
	return r.ListWithFilter(ctx, GrievanceFilter{DepartmentID: &departmentID})
}

func (r *grievanceRepository) ListAssignedTo(ctx context.Context, actorID string) ([]domain.Grievance, error) {
	return r.ListWithFilter(ctx, GrievanceFilter{AssignedTo: &actorID})
}

func (r *grievanceRepository) ListWithFilter(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, error) {
	base := `SELECT id, title, description, raised_by, department_id, status, assigned_to, version, created_at
             FROM grievances`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RaisedBy != nil {
		args = append(args, *filter.RaisedBy)
		clauses = append(clauses, fmt.Sprintf("raised_by=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	// Department and pool views expect submission order, oldest first, and
	// the full set unless the caller paginates explicitly.
	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at ASC`,
		base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrievances(rows)
}

// AppendEvent inserts the status event and advances the grievance's cached
// status/assignment in one transaction, guarded by the version the caller
// read. A stale version yields ErrVersionConflict so the caller can reload
// and re-evaluate.
func (r *grievanceRepository) AppendEvent(ctx context.Context, grievanceID string, ap EventAppend) (*domain.Grievance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const update = `
        UPDATE grievances SET status=$1, assigned_to=$2, version=version+1
        WHERE id=$3 AND version=$4`
	cmd, err := tx.Exec(ctx, update, ap.NewStatus, ap.AssignedTo, grievanceID, ap.ExpectedVersion)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM grievances WHERE id=$1)`, grievanceID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrVersionConflict
	}

	if ap.Event.OccurredAt.IsZero() {
		ap.Event.OccurredAt = time.Now().UTC()
	}
	// The version-guarded UPDATE above holds the grievance row lock, so the
	// max() read cannot race a concurrent append.
	var lastAt *time.Time
	const lastEvent = `SELECT max(occurred_at) FROM status_events WHERE grievance_id=$1`
	if err := tx.QueryRow(ctx, lastEvent, grievanceID).Scan(&lastAt); err != nil {
		return nil, err
	}
	if lastAt != nil {
		ap.Event.OccurredAt = clampEventTime(ap.Event.OccurredAt, *lastAt)
	}

	const insert = `
        INSERT INTO status_events (grievance_id, actor_id, actor_role, action, note, occurred_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	if err := tx.QueryRow(ctx, insert,
		grievanceID,
		ap.Event.ActorID,
		ap.Event.ActorRole,
		ap.Event.Action,
		ap.Event.Note,
		ap.Event.OccurredAt,
	).Scan(&ap.Event.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, grievanceID)
}

// clampEventTime keeps occurredAt non-decreasing within a single grievance's
// history even when actor clocks skew backwards.
func clampEventTime(occurredAt, lastAt time.Time) time.Time {
	if occurredAt.Before(lastAt) {
		return lastAt
	}
	return occurredAt
}

func (r *grievanceRepository) listEvents(ctx context.Context, grievanceID string) ([]domain.StatusEvent, error) {
	const query = `
        SELECT id, grievance_id, actor_id, actor_role, action, note, occurred_at
        FROM status_events WHERE grievance_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, grievanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusEvent
	for rows.Next() {
		var ev domain.StatusEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.GrievanceID,
			&ev.ActorID,
			&ev.ActorRole,
			&ev.Action,
			&ev.Note,
			&ev.OccurredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ev)
	}
	return result, rows.Err()
}

func scanGrievances(rows pgx.Rows) ([]domain.Grievance, error) {
	var result []domain.Grievance
	for rows.Next() {
		var g domain.Grievance
		if err := rows.Scan(
			&g.ID,
			&g.Title,
			&g.Description,
			&g.RaisedBy,
			&g.DepartmentID,
			&g.Status,
			&g.AssignedTo,
			&g.Version,
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}
