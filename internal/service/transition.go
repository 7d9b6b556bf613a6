package service

import (
	"github.com/spec-kit/grievance-service/internal/domain"
)

// transitionRule names the status an action produces and the roles allowed to
// request it. Department membership is checked separately.
type transitionRule struct {
	next  domain.GrievanceStatus
	roles []domain.Role
}

func (r transitionRule) permits(role domain.Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// allowedTransitions is the complete state machine: pending grievances may be
// resolved or rejected by either staff echelon, or escalated by an employee;
// escalated grievances may only be terminated by the department admin.
// Terminal states have no outgoing transitions.
var allowedTransitions = map[domain.GrievanceStatus]map[domain.GrievanceAction]transitionRule{
	domain.GrievanceStatusPending: {
		domain.ActionResolve: {
			next:  domain.GrievanceStatusResolved,
			roles: []domain.Role{domain.RoleEmployee, domain.RoleDepartmentAdmin},
		},
		domain.ActionReject: {
			next:  domain.GrievanceStatusRejected,
			roles: []domain.Role{domain.RoleEmployee, domain.RoleDepartmentAdmin},
		},
		domain.ActionPassToAdmin: {
			next:  domain.GrievanceStatusEscalated,
			roles: []domain.Role{domain.RoleEmployee},
		},
	},
	domain.GrievanceStatusEscalated: {
		domain.ActionResolve: {
			next:  domain.GrievanceStatusResolved,
			roles: []domain.Role{domain.RoleDepartmentAdmin},
		},
		domain.ActionReject: {
			next:  domain.GrievanceStatusRejected,
			roles: []domain.Role{domain.RoleDepartmentAdmin},
		},
	},
}

func transitionFor(status domain.GrievanceStatus, action domain.GrievanceAction) (transitionRule, bool) {
	rules, ok := allowedTransitions[status]
	if !ok {
		return transitionRule{}, false
	}
	rule, ok := rules[action]
	return rule, ok
}

// invalidTransitionReason explains why no transition exists for the pair.
func invalidTransitionReason(status domain.GrievanceStatus, action domain.GrievanceAction) string {
	switch {
	case status.IsTerminal():
		return "grievance already in terminal state"
	case status == domain.GrievanceStatusEscalated && action == domain.ActionPassToAdmin:
		return "grievance already escalated"
	default:
		return "action not permitted from current status"
	}
}
