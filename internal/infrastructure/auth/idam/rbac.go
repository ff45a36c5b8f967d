package idam

import (
	"sync"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// Permission is an operation exposed by the engine.
type Permission string

const (
	PermFeeCompute     Permission = "fee:compute"
	PermDecisionRecord Permission = "decision:record"
	PermHwfProcess     Permission = "hwf:process"
	PermDeadlineRead   Permission = "deadline:read"
)

// Role is an identity provider role name.
type Role string

const (
	RoleCaseworker   Role = "caseworker-civil"
	RoleJudge        Role = "caseworker-civil-judge"
	RoleLegalAdviser Role = "caseworker-civil-legal-adviser"
	RoleAdmin        Role = "caseworker-civil-admin"
	RoleSystemUpdate Role = "caseworker-civil-systemupdate"
	RoleSolicitor    Role = "caseworker-civil-solicitor"
)

type RolePermissionMapping map[Role][]Permission

// DefaultRolePermissionMapping lets judges and legal advisers record
// decisions and court staff process help-with-fees events.
func DefaultRolePermissionMapping() RolePermissionMapping {
	return RolePermissionMapping{
		RoleCaseworker:   {PermFeeCompute, PermHwfProcess, PermDeadlineRead},
		RoleJudge:        {PermFeeCompute, PermDecisionRecord, PermDeadlineRead},
		RoleLegalAdviser: {PermFeeCompute, PermDecisionRecord, PermDeadlineRead},
		RoleAdmin:        {PermFeeCompute, PermHwfProcess, PermDeadlineRead},
		RoleSystemUpdate: {PermFeeCompute, PermDecisionRecord, PermHwfProcess, PermDeadlineRead},
		RoleSolicitor:    {PermFeeCompute, PermDeadlineRead},
	}
}

// Enforcer answers permission checks for a resolved identity.
type Enforcer struct {
	mu      sync.RWMutex
	mapping RolePermissionMapping
	logger  logging.Logger
}

func NewEnforcer(mapping RolePermissionMapping, log logging.Logger) *Enforcer {
	if mapping == nil {
		mapping = DefaultRolePermissionMapping()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Enforcer{mapping: mapping, logger: log.Named("rbac")}
}

func (e *Enforcer) HasPermission(id workflow.Identity, perm Permission) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, r := range id.Roles {
		for _, p := range e.mapping[Role(r)] {
			if p == perm {
				return true
			}
		}
	}
	return false
}

// Enforce returns a forbidden error when id lacks perm.
func (e *Enforcer) Enforce(id workflow.Identity, perm Permission) error {
	if e.HasPermission(id, perm) {
		return nil
	}
	e.logger.Warn("Permission denied", logging.String("user_id", id.UserID), logging.String("permission", string(perm)))
	return errors.New(errors.ErrCodeForbidden, "insufficient permissions").WithDetail(string(perm))
}

func (e *Enforcer) UpdateMapping(mapping RolePermissionMapping) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mapping = mapping
}

//Personal.AI order the ending
