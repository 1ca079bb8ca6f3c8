// internal/app/features/groups/handler.go
package groups

import (
	"github.com/dalemusser/studycircle/internal/app/services/membership"
	"github.com/dalemusser/studycircle/internal/app/store/audit"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// It holds the membership manager, the audit store used by the activity
// view, and the logger.
type Handler struct {
	Groups *membership.Manager
	Audit  *audit.Store
	Log    *zap.Logger
}

// NewHandler constructs a new groups Handler. It is typically called from
// the bootstrap BuildHandler function, where the stores and logger are
// already initialized. auditStore may be nil, which leaves the activity
// view empty.
func NewHandler(groups *membership.Manager, auditStore *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Groups: groups,
		Audit:  auditStore,
		Log:    logger,
	}
}
