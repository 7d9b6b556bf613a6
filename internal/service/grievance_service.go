package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// GrievanceReader is the read surface served to views. It may be the
// repository itself or the redis-decorated reader.
type GrievanceReader interface {
	GetByID(ctx context.Context, id string) (*domain.Grievance, error)
	ListWithFilter(ctx context.Context, filter repository.GrievanceFilter) ([]domain.Grievance, error)
	ListAssignedTo(ctx context.Context, actorID string) ([]domain.Grievance, error)
}

// GrievanceService is the command/query façade over the grievance workflow:
// submission, the transition engine, and role-scoped views.
type GrievanceService struct {
	grievances  repository.GrievanceRepository
	reader      GrievanceReader
	departments repository.DepartmentRepository
	cache       *repository.CachedGrievanceReader
	dispatcher  events.Dispatcher
}

// GrievanceDependencies bundles collaborators for the service. Reader and
// Cache are optional; when absent all reads go through the repository.
type GrievanceDependencies struct {
	GrievanceRepo  repository.GrievanceRepository
	Reader         GrievanceReader
	DepartmentRepo repository.DepartmentRepository
	Cache          *repository.CachedGrievanceReader
	Dispatcher     events.Dispatcher
}

// SubmitInput describes a citizen submission.
type SubmitInput struct {
	Title        string
	Description  string
	RaisedBy     string
	DepartmentID string
}

// GrievanceView pairs a grievance with its resolved routing for display.
type GrievanceView struct {
	Grievance  domain.Grievance
	Assignment Assignment
}

// NewGrievanceService constructs the service.
func NewGrievanceService(deps GrievanceDependencies) *GrievanceService {
	reader := deps.Reader
	if reader == nil {
		reader = deps.GrievanceRepo
	}
	return &GrievanceService{
		grievances:  deps.GrievanceRepo,
		reader:      reader,
		departments: deps.DepartmentRepo,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
	}
}

// Submit files a new grievance in status PENDING, unassigned.
func (s *GrievanceService) Submit(ctx context.Context, input SubmitInput) (*domain.Grievance, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}

	dept, err := s.departments.GetByID(ctx, input.DepartmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": input.DepartmentID})
		}
		return nil, apperrors.MapError(err)
	}
	if !dept.IsActive {
		return nil, apperrors.NewValidationError("department inactive", map[string]any{"department_id": dept.ID})
	}

	grievance := &domain.Grievance{
		Title:        title,
		Description:  description,
		RaisedBy:     input.RaisedBy,
		DepartmentID: dept.ID,
		Status:       domain.GrievanceStatusPending,
	}
	if err := s.grievances.Create(ctx, grievance); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventGrievanceSubmitted,
		GrievanceID: grievance.ID,
		Actor:       events.Actor{ID: input.RaisedBy, Role: domain.RoleCitizen},
		Payload: events.GrievanceSubmittedPayload{
			DepartmentID: grievance.DepartmentID,
			Title:        grievance.Title,
		},
	})
	return grievance, nil
}

// Apply validates and commits one workflow action. It performs its
// pre-transition read against the authoritative store and relies on the
// store's compare-and-append for per-grievance serialization; on a lost race
// it returns a CONFLICT error and the caller reloads and re-evaluates.
func (s *GrievanceService) Apply(ctx context.Context, actor domain.Actor, grievanceID string, action domain.GrievanceAction, note string) (*domain.Grievance, error) {
	grievance, err := s.grievances.GetByID(ctx, grievanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("grievance", map[string]any{"grievance_id": grievanceID})
		}
		return nil, apperrors.MapError(err)
	}

	rule, ok := transitionFor(grievance.Status, action)
	if !ok {
		return nil, apperrors.NewInvalidTransition(invalidTransitionReason(grievance.Status, action), map[string]any{
			"status": grievance.Status,
			"action": action,
		})
	}
	if !rule.permits(actor.Role) {
		return nil, apperrors.NewForbidden("role not permitted for this action")
	}
	if actor.DepartmentID != grievance.DepartmentID {
		return nil, apperrors.NewForbidden("actor outside grievance department")
	}

	note = strings.TrimSpace(note)
	if action.RequiresNote() && note == "" {
		return nil, apperrors.NewValidationError("note required for this action", map[string]any{"action": action})
	}
	if action == domain.ActionPassToAdmin && note == "" {
		note = domain.DefaultEscalationNote
	}

	assignedTo, err := s.assignmentAfter(ctx, grievance, rule.next, actor)
	if err != nil {
		return nil, err
	}

	event := domain.StatusEvent{
		GrievanceID: grievance.ID,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		Action:      action,
		Note:        note,
		OccurredAt:  time.Now().UTC(),
	}

	updated, err := s.grievances.AppendEvent(ctx, grievance.ID, repository.EventAppend{
		ExpectedVersion: grievance.Version,
		Event:           event,
		NewStatus:       rule.next,
		AssignedTo:      assignedTo,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, apperrors.NewConflict("grievance changed concurrently, reload and retry", map[string]any{"grievance_id": grievance.ID})
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("grievance", map[string]any{"grievance_id": grievance.ID})
		default:
			return nil, apperrors.MapError(err)
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, updated.ID)
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventGrievanceStatusChanged,
		GrievanceID: updated.ID,
		Actor:       events.Actor{ID: actor.ID, Role: actor.Role},
		Payload: events.GrievanceStatusChangedPayload{
			OldStatus: grievance.Status,
			NewStatus: updated.Status,
			Action:    action,
			Note:      note,
		},
	})
	return updated, nil
}

// Get fetches one grievance, enforcing the caller's visibility scope.
func (s *GrievanceService) Get(ctx context.Context, actor domain.Actor, grievanceID string) (*GrievanceView, error) {
	grievance, err := s.reader.GetByID(ctx, grievanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("grievance", map[string]any{"grievance_id": grievanceID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.checkViewScope(actor, grievance); err != nil {
		return nil, err
	}
	return s.toView(ctx, grievance)
}

// ListForActor returns the role-scoped worklist: citizens see their own
// submissions, employees the department's pending pool plus items routed to
// them, admins everything in their department.
func (s *GrievanceService) ListForActor(ctx context.Context, actor domain.Actor) ([]GrievanceView, error) {
	var (
		grievances []domain.Grievance
		err        error
	)
	switch actor.Role {
	case domain.RoleCitizen:
		grievances, err = s.reader.ListWithFilter(ctx, repository.GrievanceFilter{RaisedBy: &actor.ID})
	case domain.RoleEmployee:
		grievances, err = s.employeeWorklist(ctx, actor)
	case domain.RoleDepartmentAdmin:
		grievances, err = s.reader.ListWithFilter(ctx, repository.GrievanceFilter{DepartmentID: &actor.DepartmentID})
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	views := make([]GrievanceView, 0, len(grievances))
	depts := map[string]*domain.Department{}
	for i := range grievances {
		dept, ok := depts[grievances[i].DepartmentID]
		if !ok {
			dept, err = s.departments.GetByID(ctx, grievances[i].DepartmentID)
			if err != nil {
				return nil, apperrors.MapError(err)
			}
			depts[dept.ID] = dept
		}
		views = append(views, GrievanceView{
			Grievance:  grievances[i],
			Assignment: ResolveAssignment(grievances[i].Status, dept, grievances[i].History),
		})
	}
	return views, nil
}

func (s *GrievanceService) employeeWorklist(ctx context.Context, actor domain.Actor) ([]domain.Grievance, error) {
	pool, err := s.reader.ListWithFilter(ctx, repository.GrievanceFilter{
		DepartmentID: &actor.DepartmentID,
		Statuses:     []domain.GrievanceStatus{domain.GrievanceStatusPending},
	})
	if err != nil {
		return nil, err
	}
	routed, err := s.reader.ListAssignedTo(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(pool))
	for _, g := range pool {
		seen[g.ID] = struct{}{}
	}
	for _, g := range routed {
		if _, dup := seen[g.ID]; !dup {
			pool = append(pool, g)
		}
	}
	return pool, nil
}

func (s *GrievanceService) assignmentAfter(ctx context.Context, grievance *domain.Grievance, next domain.GrievanceStatus, actor domain.Actor) (*string, error) {
	if next == domain.GrievanceStatusEscalated {
		dept, err := s.departments.GetByID(ctx, grievance.DepartmentID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return dept.AdminID, nil
	}
	if next.IsTerminal() {
		actorID := actor.ID
		return &actorID, nil
	}
	return nil, nil
}

func (s *GrievanceService) checkViewScope(actor domain.Actor, grievance *domain.Grievance) error {
	switch actor.Role {
	case domain.RoleCitizen:
		if grievance.RaisedBy != actor.ID {
			return apperrors.NewForbidden("grievance belongs to another citizen")
		}
	case domain.RoleEmployee, domain.RoleDepartmentAdmin:
		if grievance.DepartmentID != actor.DepartmentID {
			return apperrors.NewForbidden("grievance belongs to another department")
		}
	default:
		return apperrors.NewForbidden("unknown role")
	}
	return nil
}

func (s *GrievanceService) toView(ctx context.Context, grievance *domain.Grievance) (*GrievanceView, error) {
	dept, err := s.departments.GetByID(ctx, grievance.DepartmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &GrievanceView{
		Grievance:  *grievance,
		Assignment: ResolveAssignment(grievance.Status, dept, grievance.History),
	}, nil
}

func (s *GrievanceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
