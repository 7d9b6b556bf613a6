package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionResultingStatus(t *testing.T) {
	assert.Equal(t, GrievanceStatusResolved, ActionResolve.ResultingStatus())
	assert.Equal(t, GrievanceStatusRejected, ActionReject.ResultingStatus())
	assert.Equal(t, GrievanceStatusEscalated, ActionPassToAdmin.ResultingStatus())
}

func TestActionRequiresNote(t *testing.T) {
	assert.True(t, ActionResolve.RequiresNote())
	assert.True(t, ActionReject.RequiresNote())
	assert.False(t, ActionPassToAdmin.RequiresNote())
}

func TestActionIsValid(t *testing.T) {
	assert.True(t, ActionResolve.IsValid())
	assert.False(t, GrievanceAction("CLOSE").IsValid())
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, GrievanceStatusPending, DeriveStatus(nil))

	history := []StatusEvent{{Action: ActionPassToAdmin}}
	assert.Equal(t, GrievanceStatusEscalated, DeriveStatus(history))

	history = append(history, StatusEvent{Action: ActionReject})
	assert.Equal(t, GrievanceStatusRejected, DeriveStatus(history))
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, GrievanceStatusPending.IsTerminal())
	assert.False(t, GrievanceStatusEscalated.IsTerminal())
	assert.True(t, GrievanceStatusResolved.IsTerminal())
	assert.True(t, GrievanceStatusRejected.IsTerminal())
}
