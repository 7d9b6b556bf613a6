package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

type fixture struct {
	grievances *repository.MemoryGrievanceRepository
	deps       *repository.MemoryDepartmentRepository
	service    *GrievanceService
	dispatcher *captureDispatcher

	department domain.Department
	citizen    domain.Actor
	employee   domain.Actor
	employee2  domain.Actor
	admin      domain.Actor
}

type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.Event, len(d.events))
	copy(out, d.events)
	return out
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	grievances := repository.NewMemoryGrievanceRepository()
	departments := repository.NewMemoryDepartmentRepository()
	dispatcher := &captureDispatcher{}

	adminID := "admin-1"
	dept := domain.Department{Name: "Sanitation", AdminID: &adminID, IsActive: true}
	require.NoError(t, departments.Create(context.Background(), &dept))

	svc := NewGrievanceService(GrievanceDependencies{
		GrievanceRepo:  grievances,
		DepartmentRepo: departments,
		Dispatcher:     dispatcher,
	})

	return &fixture{
		grievances: grievances,
		deps:       departments,
		service:    svc,
		dispatcher: dispatcher,
		department: dept,
		citizen:    domain.Actor{ID: "citizen-1", Role: domain.RoleCitizen},
		employee:   domain.Actor{ID: "employee-1", Role: domain.RoleEmployee, DepartmentID: dept.ID},
		employee2:  domain.Actor{ID: "employee-2", Role: domain.RoleEmployee, DepartmentID: dept.ID},
		admin:      domain.Actor{ID: adminID, Role: domain.RoleDepartmentAdmin, DepartmentID: dept.ID},
	}
}

func (f *fixture) submit(t *testing.T) *domain.Grievance {
	t.Helper()
	g, err := f.service.Submit(context.Background(), SubmitInput{
		Title:        "Overflowing bins on Elm Street",
		Description:  "Bins have not been collected for two weeks.",
		RaisedBy:     f.citizen.ID,
		DepartmentID: f.department.ID,
	})
	require.NoError(t, err)
	return g
}

func TestSubmitCreatesPendingUnassigned(t *testing.T) {
	f := newFixture(t)

	g := f.submit(t)

	assert.Equal(t, domain.GrievanceStatusPending, g.Status)
	assert.Nil(t, g.AssignedTo)
	assert.Equal(t, 0, g.Version)
	assert.Empty(t, g.History)

	published := f.dispatcher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventGrievanceSubmitted, published[0].Type)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, SubmitInput{Title: "  ", Description: "x", RaisedBy: "c", DepartmentID: f.department.ID})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	_, err = f.service.Submit(ctx, SubmitInput{Title: "t", Description: "d", RaisedBy: "c", DepartmentID: "missing"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	inactive := domain.Department{Name: "Archives", IsActive: false}
	require.NoError(t, f.deps.Create(ctx, &inactive))
	_, err = f.service.Submit(ctx, SubmitInput{Title: "t", Description: "d", RaisedBy: "c", DepartmentID: inactive.ID})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestEmployeeResolvesPending(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)

	updated, err := f.service.Apply(context.Background(), f.employee, g.ID, domain.ActionResolve, "fixed the schedule")
	require.NoError(t, err)

	assert.Equal(t, domain.GrievanceStatusResolved, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, f.employee.ID, *updated.AssignedTo)
	assert.Equal(t, 1, updated.Version)
	require.Len(t, updated.History, 1)
	assert.Equal(t, domain.ActionResolve, updated.History[0].Action)
	assert.Equal(t, "fixed the schedule", updated.History[0].Note)
}

func TestResolveRequiresNote(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)

	_, err := f.service.Apply(context.Background(), f.employee, g.ID, domain.ActionResolve, "   ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	_, err = f.service.Apply(context.Background(), f.admin, g.ID, domain.ActionReject, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestEscalationDefaultsNoteAndRoutesToAdmin(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)

	updated, err := f.service.Apply(context.Background(), f.employee, g.ID, domain.ActionPassToAdmin, "")
	require.NoError(t, err)

	assert.Equal(t, domain.GrievanceStatusEscalated, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, f.admin.ID, *updated.AssignedTo)
	require.Len(t, updated.History, 1)
	assert.Equal(t, domain.DefaultEscalationNote, updated.History[0].Note)
}

func TestEscalationKeepsProvidedNote(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)

	updated, err := f.service.Apply(context.Background(), f.employee, g.ID, domain.ActionPassToAdmin, "needs budget approval")
	require.NoError(t, err)
	assert.Equal(t, "needs budget approval", updated.History[0].Note)
}

func TestOnlyEmployeeMayEscalate(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)

	_, err := f.service.Apply(context.Background(), f.admin, g.ID, domain.ActionPassToAdmin, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	citizen := f.citizen
	citizen.DepartmentID = f.department.ID
	_, err = f.service.Apply(context.Background(), citizen, g.ID, domain.ActionResolve, "note")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestEscalatedGrievanceIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)
	ctx := context.Background()

	_, err := f.service.Apply(ctx, f.employee, g.ID, domain.ActionPassToAdmin, "")
	require.NoError(t, err)

	_, err = f.service.Apply(ctx, f.employee2, g.ID, domain.ActionResolve, "note")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.service.Apply(ctx, f.employee, g.ID, domain.ActionPassToAdmin, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	updated, err := f.service.Apply(ctx, f.admin, g.ID, domain.ActionReject, "outside our remit")
	require.NoError(t, err)
	assert.Equal(t, domain.GrievanceStatusRejected, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, f.admin.ID, *updated.AssignedTo)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)
	ctx := context.Background()

	_, err := f.service.Apply(ctx, f.employee, g.ID, domain.ActionResolve, "done")
	require.NoError(t, err)

	for _, action := range []domain.GrievanceAction{domain.ActionResolve, domain.ActionReject, domain.ActionPassToAdmin} {
		_, err := f.service.Apply(ctx, f.admin, g.ID, action, "note")
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition), "action %s", action)
	}
}

func TestCrossDepartmentActorForbidden(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)

	outsider := domain.Actor{ID: "employee-9", Role: domain.RoleEmployee, DepartmentID: "other-dept"}
	_, err := f.service.Apply(context.Background(), outsider, g.ID, domain.ActionResolve, "note")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.service.Apply(context.Background(), f.employee, g.ID, domain.ActionPassToAdmin, "")
	require.NoError(t, err)

	foreignAdmin := domain.Actor{ID: "admin-9", Role: domain.RoleDepartmentAdmin, DepartmentID: "other-dept"}
	_, err = f.service.Apply(context.Background(), foreignAdmin, g.ID, domain.ActionResolve, "x")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestApplyUnknownGrievance(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Apply(context.Background(), f.employee, "missing", domain.ActionResolve, "note")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

// staleReader hands the engine an outdated version so the compare-and-append
// loses the race.
type staleReader struct {
	repository.GrievanceRepository
}

func (r staleReader) GetByID(ctx context.Context, id string) (*domain.Grievance, error) {
	g, err := r.GrievanceRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Version--
	return g, nil
}

func TestLostRaceSurfacesConflict(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)
	ctx := context.Background()

	_, err := f.service.Apply(ctx, f.employee, g.ID, domain.ActionPassToAdmin, "")
	require.NoError(t, err)

	svc := NewGrievanceService(GrievanceDependencies{
		GrievanceRepo:  staleReader{f.grievances},
		DepartmentRepo: f.deps,
	})
	_, err = svc.Apply(ctx, f.admin, g.ID, domain.ActionResolve, "note")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestConcurrentAppliesSerialize(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)
	ctx := context.Background()

	current, err := f.grievances.GetByID(ctx, g.ID)
	require.NoError(t, err)

	results := make(chan error, 2)
	for _, actor := range []domain.Actor{f.employee, f.employee2} {
		go func(a domain.Actor) {
			_, err := f.grievances.AppendEvent(ctx, g.ID, repository.EventAppend{
				ExpectedVersion: current.Version,
				Event: domain.StatusEvent{
					ActorID:   a.ID,
					ActorRole: a.Role,
					Action:    domain.ActionResolve,
					Note:      "done",
				},
				NewStatus:  domain.GrievanceStatusResolved,
				AssignedTo: &a.ID,
			})
			results <- err
		}(actor)
	}

	var conflicts, successes int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			require.ErrorIs(t, err, repository.ErrVersionConflict)
			conflicts++
		} else {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	final, err := f.grievances.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, final.Version)
	assert.Len(t, final.History, 1)
}

func TestStatusAgreesWithHistory(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)
	ctx := context.Background()

	_, err := f.service.Apply(ctx, f.employee, g.ID, domain.ActionPassToAdmin, "")
	require.NoError(t, err)
	updated, err := f.service.Apply(ctx, f.admin, g.ID, domain.ActionResolve, "approved repairs")
	require.NoError(t, err)

	assert.Equal(t, updated.Status, domain.DeriveStatus(updated.History))
	assert.Equal(t, len(updated.History), updated.Version)
}

func TestGetEnforcesViewScope(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)
	ctx := context.Background()

	view, err := f.service.Get(ctx, f.citizen, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, view.Grievance.ID)
	assert.Equal(t, AssignmentEmployeePool, view.Assignment.Kind)

	otherCitizen := domain.Actor{ID: "citizen-2", Role: domain.RoleCitizen}
	_, err = f.service.Get(ctx, otherCitizen, g.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	outsider := domain.Actor{ID: "employee-9", Role: domain.RoleEmployee, DepartmentID: "other-dept"}
	_, err = f.service.Get(ctx, outsider, g.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = f.service.Get(ctx, f.citizen, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListForActorScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.submit(t)
	second := f.submit(t)

	theirs, err := f.service.Submit(ctx, SubmitInput{
		Title:        "Broken street light",
		Description:  "Corner of 5th and Main.",
		RaisedBy:     "citizen-2",
		DepartmentID: f.department.ID,
	})
	require.NoError(t, err)

	// Citizen sees only their own submissions.
	views, err := f.service.ListForActor(ctx, f.citizen)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Equal(t, f.citizen.ID, v.Grievance.RaisedBy)
	}

	// Employee sees the department's pending pool.
	views, err = f.service.ListForActor(ctx, f.employee)
	require.NoError(t, err)
	assert.Len(t, views, 3)

	// Items escalated away leave the pool but stay on the admin's list.
	_, err = f.service.Apply(ctx, f.employee, second.ID, domain.ActionPassToAdmin, "")
	require.NoError(t, err)

	views, err = f.service.ListForActor(ctx, f.employee)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	adminViews, err := f.service.ListForActor(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, adminViews, 3)

	// A grievance resolved by the employee remains on their worklist.
	_, err = f.service.Apply(ctx, f.employee, mine.ID, domain.ActionResolve, "collected")
	require.NoError(t, err)

	views, err = f.service.ListForActor(ctx, f.employee)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	ids := map[string]bool{}
	for _, v := range views {
		ids[v.Grievance.ID] = true
	}
	assert.True(t, ids[mine.ID])
	assert.True(t, ids[theirs.ID])
}

func TestApplyPublishesStatusChangedEvent(t *testing.T) {
	f := newFixture(t)
	g := f.submit(t)

	_, err := f.service.Apply(context.Background(), f.employee, g.ID, domain.ActionResolve, "done")
	require.NoError(t, err)

	published := f.dispatcher.published()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventGrievanceStatusChanged, published[1].Type)

	payload, ok := published[1].Payload.(events.GrievanceStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.GrievanceStatusPending, payload.OldStatus)
	assert.Equal(t, domain.GrievanceStatusResolved, payload.NewStatus)
}
