package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// MemoryGrievanceRepository is a map-backed store used in tests. It favors
// clarity over performance and provides the same per-grievance
// compare-and-append guarantees as the postgres implementation.
type MemoryGrievanceRepository struct {
	mu         sync.RWMutex
	grievances map[string]domain.Grievance
}

// NewMemoryGrievanceRepository builds an empty store.
func NewMemoryGrievanceRepository() *MemoryGrievanceRepository {
	return &MemoryGrievanceRepository{grievances: make(map[string]domain.Grievance)}
}

func (r *MemoryGrievanceRepository) Create(_ context.Context, grievance *domain.Grievance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if grievance.ID == "" {
		grievance.ID = uuid.NewString()
	}
	if grievance.CreatedAt.IsZero() {
		grievance.CreatedAt = time.Now().UTC()
	}
	grievance.Version = len(grievance.History)
	r.grievances[grievance.ID] = cloneGrievance(*grievance)
	return nil
}

func (r *MemoryGrievanceRepository) GetByID(_ context.Context, id string) (*domain.Grievance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.grievances[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneGrievance(g)
	return &out, nil
}

func (r *MemoryGrievanceRepository) ListByDepartment(ctx context.Context, departmentID string) ([]domain.Grievance, error) {
	return r.ListWithFilter(ctx, GrievanceFilter{DepartmentID: &departmentID})
}

func (r *MemoryGrievanceRepository) ListAssignedTo(ctx context.Context, actorID string) ([]domain.Grievance, error) {
	return r.ListWithFilter(ctx, GrievanceFilter{AssignedTo: &actorID})
}

func (r *MemoryGrievanceRepository) ListWithFilter(_ context.Context, filter GrievanceFilter) ([]domain.Grievance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Grievance, 0)
	for _, g := range r.grievances {
		if !matchesFilter(g, filter) {
			continue
		}
		matched = append(matched, cloneGrievance(g))
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return strings.Compare(matched[i].ID, matched[j].ID) < 0
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.Grievance{}, nil
	}
	matched = matched[offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *MemoryGrievanceRepository) AppendEvent(_ context.Context, grievanceID string, ap EventAppend) (*domain.Grievance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.grievances[grievanceID]
	if !ok {
		return nil, ErrNotFound
	}
	if g.Version != ap.ExpectedVersion {
		return nil, ErrVersionConflict
	}

	event := ap.Event
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.GrievanceID = grievanceID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if n := len(g.History); n > 0 {
		event.OccurredAt = clampEventTime(event.OccurredAt, g.History[n-1].OccurredAt)
	}

	g.History = append(g.History, event)
	g.Status = ap.NewStatus
	g.AssignedTo = ap.AssignedTo
	g.Version = len(g.History)
	r.grievances[grievanceID] = cloneGrievance(g)

	out := cloneGrievance(g)
	return &out, nil
}

func matchesFilter(g domain.Grievance, filter GrievanceFilter) bool {
	if filter.RaisedBy != nil && g.RaisedBy != *filter.RaisedBy {
		return false
	}
	if filter.DepartmentID != nil && g.DepartmentID != *filter.DepartmentID {
		return false
	}
	if filter.AssignedTo != nil {
		if g.AssignedTo == nil || *g.AssignedTo != *filter.AssignedTo {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if g.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.CreatedFrom != nil && g.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && g.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

func cloneGrievance(g domain.Grievance) domain.Grievance {
	out := g
	if g.AssignedTo != nil {
		assigned := *g.AssignedTo
		out.AssignedTo = &assigned
	}
	out.History = append([]domain.StatusEvent(nil), g.History...)
	return out
}
