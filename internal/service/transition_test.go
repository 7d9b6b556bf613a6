package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func TestTransitionTableIsTotal(t *testing.T) {
	statuses := []domain.GrievanceStatus{
		domain.GrievanceStatusPending,
		domain.GrievanceStatusResolved,
		domain.GrievanceStatusRejected,
		domain.GrievanceStatusEscalated,
	}
	actions := []domain.GrievanceAction{
		domain.ActionResolve,
		domain.ActionReject,
		domain.ActionPassToAdmin,
	}

	for _, status := range statuses {
		for _, action := range actions {
			rule, ok := transitionFor(status, action)
			if status.IsTerminal() {
				assert.False(t, ok, "%s should reject %s", status, action)
				continue
			}
			if status == domain.GrievanceStatusEscalated && action == domain.ActionPassToAdmin {
				assert.False(t, ok, "escalated grievances cannot escalate again")
				continue
			}
			require.True(t, ok, "%s should accept %s", status, action)
			assert.Equal(t, action.ResultingStatus(), rule.next)
			assert.NotEmpty(t, rule.roles)
		}
	}
}

func TestTransitionRolePermissions(t *testing.T) {
	rule, ok := transitionFor(domain.GrievanceStatusPending, domain.ActionPassToAdmin)
	require.True(t, ok)
	assert.True(t, rule.permits(domain.RoleEmployee))
	assert.False(t, rule.permits(domain.RoleDepartmentAdmin))
	assert.False(t, rule.permits(domain.RoleCitizen))

	rule, ok = transitionFor(domain.GrievanceStatusEscalated, domain.ActionResolve)
	require.True(t, ok)
	assert.True(t, rule.permits(domain.RoleDepartmentAdmin))
	assert.False(t, rule.permits(domain.RoleEmployee))
}

func TestInvalidTransitionReasons(t *testing.T) {
	assert.Equal(t, "grievance already in terminal state",
		invalidTransitionReason(domain.GrievanceStatusResolved, domain.ActionResolve))
	assert.Equal(t, "grievance already escalated",
		invalidTransitionReason(domain.GrievanceStatusEscalated, domain.ActionPassToAdmin))
	assert.Equal(t, "action not permitted from current status",
		invalidTransitionReason(domain.GrievanceStatusPending, domain.GrievanceAction("CLOSE")))
}
