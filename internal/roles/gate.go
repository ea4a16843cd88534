package roles

import (
	"fmt"

	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	pkgerrors "github.com/calebmorton/schedtrack-backend/pkg/errors"
)

// Capability names a guarded operation. Capabilities are checked against the
// actor's role; a role the gate does not recognize is denied.
type Capability string

const (
	CapabilityManageProjects       Capability = "projects.manage"
	CapabilityManageUsers          Capability = "users.manage"
	CapabilityViewDeletedWork      Capability = "work.view_deleted"
	CapabilityRestoreWork          Capability = "work.restore"
	CapabilityPurgeWork            Capability = "work.purge"
	CapabilityViewActivity         Capability = "activity.view"
	CapabilityViewAllWork          Capability = "work.view_all"
	CapabilityManageWork           Capability = "work.manage"
	CapabilityTrackTime            Capability = "time.track"
	CapabilityViewDashboard        Capability = "dashboard.view"
	CapabilityManageUpdateRequests Capability = "update_requests.manage"
	CapabilityManageWhiteboards    Capability = "whiteboards.manage"
)

var managerOnly = map[Capability]struct{}{
	CapabilityManageProjects:  {},
	CapabilityManageUsers:     {},
	CapabilityViewDeletedWork: {},
	CapabilityPurgeWork:       {},
	CapabilityViewActivity:    {},
	CapabilityViewAllWork:     {},
}

var staff = map[Capability]struct{}{
	CapabilityManageWork:           {},
	CapabilityRestoreWork:          {},
	CapabilityTrackTime:            {},
	CapabilityViewDashboard:        {},
	CapabilityManageUpdateRequests: {},
	CapabilityManageWhiteboards:    {},
}

// Check returns a FORBIDDEN error unless the role grants the capability.
// An empty role (user without a profile) is always denied.
func Check(role enums.Role, capability Capability) error {
	if Allowed(role, capability) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("role %q may not %s", role, capability))
}

// Allowed reports whether the role grants the capability.
func Allowed(role enums.Role, capability Capability) bool {
	if !role.IsValid() {
		return false
	}
	if _, ok := staff[capability]; ok {
		return true
	}
	if _, ok := managerOnly[capability]; ok {
		return role == enums.RoleManager
	}
	return false
}

// DisplayRole resolves the role shown in UI payloads. A user without a
// profile displays as scheduler even though the gate denies them access.
func DisplayRole(role enums.Role) enums.Role {
	if !role.IsValid() {
		return enums.RoleScheduler
	}
	return role
}
