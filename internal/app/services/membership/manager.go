// Package membership owns every study-group membership transition: create,
// join or request, approve, reject, leave, edit and delete.
//
// Each check-then-write is issued as one conditional store write. When the
// write's conditions no longer hold, the group is re-read once to name the
// reason; nothing is retried.
package membership

import (
	"context"
	"errors"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	groupstore "github.com/dalemusser/studycircle/internal/app/store/groups"
	"github.com/dalemusser/studycircle/internal/app/system/apperr"
	"github.com/dalemusser/studycircle/internal/app/system/auditlog"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/normalize"
	"github.com/dalemusser/studycircle/internal/domain/models"
	"go.uber.org/zap"
)

// JoinOutcome reports what RequestOrJoin did.
type JoinOutcome string

const (
	Joined         JoinOutcome = "joined"
	RequestPending JoinOutcome = "request_pending"
)

// Manager is request-scoped in spirit: it holds no mutable state of its own
// and may be shared freely between goroutines.
type Manager struct {
	groups *groupstore.Store
	audit  *auditlog.Logger
	log    *zap.Logger
}

// New builds a Manager. audit may be nil.
func New(groups *groupstore.Store, audit *auditlog.Logger, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{groups: groups, audit: audit, log: log}
}

// CreateGroup validates in and stores a new group owned by caller, with the
// caller as its first member.
func (m *Manager) CreateGroup(ctx context.Context, caller auth.User, in GroupInput) (models.Group, error) {
	if err := requireCaller(caller); err != nil {
		return models.Group{}, err
	}
	info, err := in.validate()
	if err != nil {
		return models.Group{}, err
	}
	g, err := m.groups.Create(ctx, caller.ID, info)
	if err != nil {
		return models.Group{}, m.storeErr("create group", err)
	}
	m.log.Info("group created",
		zap.String("group_id", g.ID),
		zap.String("owner_id", caller.ID))
	m.audit.GroupCreated(ctx, caller.ID, g.ID, g.Name)
	return g, nil
}

// RequestOrJoin adds caller to a public group, or queues a join request on a
// private one.
func (m *Manager) RequestOrJoin(ctx context.Context, caller auth.User, groupID string) (JoinOutcome, error) {
	if err := requireCaller(caller); err != nil {
		return "", err
	}
	g, err := m.load(ctx, groupID)
	if err != nil {
		return "", err
	}
	if err := joinBlocked(g, caller.ID); err != nil {
		m.denied(ctx, caller.ID, caller.ID, g.ID, "join", err)
		return "", err
	}

	outcome := Joined
	conds := []docstore.Condition{
		docstore.NotContains(groupstore.FieldMembers, caller.ID),
		docstore.SizeBelowField(groupstore.FieldMembers, groupstore.FieldMaxMembers),
		docstore.Equals(groupstore.FieldPrivate, g.Private),
	}
	var ops []docstore.SetOp
	if g.Private {
		outcome = RequestPending
		conds = append(conds, docstore.NotContains(groupstore.FieldJoinRequests, caller.ID))
		ops = []docstore.SetOp{docstore.AddToSet(groupstore.FieldJoinRequests, caller.ID)}
	} else {
		ops = []docstore.SetOp{
			docstore.RemoveFromSet(groupstore.FieldJoinRequests, caller.ID),
			docstore.AddToSet(groupstore.FieldMembers, caller.ID),
		}
	}

	if err := m.groups.Mutate(ctx, g.ID, conds, ops...); err != nil {
		err = m.explain(ctx, g.ID, "join", err, func(fresh models.Group) error {
			return joinBlocked(fresh, caller.ID)
		})
		m.denied(ctx, caller.ID, caller.ID, g.ID, "join", err)
		return "", err
	}

	if outcome == Joined {
		m.audit.MemberJoined(ctx, caller.ID, g.ID)
	} else {
		m.audit.JoinRequested(ctx, caller.ID, g.ID)
	}
	return outcome, nil
}

// joinBlocked names why userID may not join or request to join g, if any.
func joinBlocked(g models.Group, userID string) error {
	switch {
	case g.IsMember(userID):
		return apperr.ErrAlreadyMember
	case g.IsFull():
		return apperr.ErrGroupFull
	case g.Private && g.HasRequest(userID):
		return apperr.ErrRequestPending
	}
	return nil
}

// Approve moves target from the join queue onto the roster. Owner only.
func (m *Manager) Approve(ctx context.Context, caller auth.User, groupID, target string) (models.Group, error) {
	if err := requireCaller(caller); err != nil {
		return models.Group{}, err
	}
	target = normalize.ID(target)
	g, err := m.load(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if err := approveBlocked(g, caller.ID, target); err != nil {
		m.denied(ctx, caller.ID, target, g.ID, "approve", err)
		return models.Group{}, err
	}

	err = m.groups.Mutate(ctx, g.ID,
		[]docstore.Condition{
			docstore.Equals(groupstore.FieldOwner, caller.ID),
			docstore.Contains(groupstore.FieldJoinRequests, target),
			docstore.NotContains(groupstore.FieldMembers, target),
			docstore.SizeBelowField(groupstore.FieldMembers, groupstore.FieldMaxMembers),
		},
		docstore.RemoveFromSet(groupstore.FieldJoinRequests, target),
		docstore.AddToSet(groupstore.FieldMembers, target),
	)
	if err != nil {
		err = m.explain(ctx, g.ID, "approve", err, func(fresh models.Group) error {
			return approveBlocked(fresh, caller.ID, target)
		})
		m.denied(ctx, caller.ID, target, g.ID, "approve", err)
		return models.Group{}, err
	}

	m.audit.RequestApproved(ctx, caller.ID, target, g.ID)
	return m.load(ctx, g.ID)
}

func approveBlocked(g models.Group, callerID, target string) error {
	switch {
	case g.OwnerID != callerID:
		return apperr.Unauthorized("only the group owner can approve join requests")
	case g.IsMember(target):
		return apperr.ErrAlreadyMember
	case !g.HasRequest(target):
		return apperr.NotFound("join request")
	case g.IsFull():
		return apperr.ErrGroupFull
	}
	return nil
}

// Reject drops target's pending request. Owner only.
func (m *Manager) Reject(ctx context.Context, caller auth.User, groupID, target string) (models.Group, error) {
	if err := requireCaller(caller); err != nil {
		return models.Group{}, err
	}
	target = normalize.ID(target)
	g, err := m.load(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if err := rejectBlocked(g, caller.ID, target); err != nil {
		m.denied(ctx, caller.ID, target, g.ID, "reject", err)
		return models.Group{}, err
	}

	err = m.groups.Mutate(ctx, g.ID,
		[]docstore.Condition{
			docstore.Equals(groupstore.FieldOwner, caller.ID),
			docstore.Contains(groupstore.FieldJoinRequests, target),
		},
		docstore.RemoveFromSet(groupstore.FieldJoinRequests, target),
	)
	if err != nil {
		err = m.explain(ctx, g.ID, "reject", err, func(fresh models.Group) error {
			return rejectBlocked(fresh, caller.ID, target)
		})
		m.denied(ctx, caller.ID, target, g.ID, "reject", err)
		return models.Group{}, err
	}

	m.audit.RequestRejected(ctx, caller.ID, target, g.ID)
	return m.load(ctx, g.ID)
}

func rejectBlocked(g models.Group, callerID, target string) error {
	switch {
	case g.OwnerID != callerID:
		return apperr.Unauthorized("only the group owner can reject join requests")
	case !g.HasRequest(target):
		return apperr.NotFound("join request")
	}
	return nil
}

// Leave removes caller from the roster. The owner cannot leave.
func (m *Manager) Leave(ctx context.Context, caller auth.User, groupID string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	g, err := m.load(ctx, groupID)
	if err != nil {
		return err
	}
	if err := leaveBlocked(g, caller.ID); err != nil {
		m.denied(ctx, caller.ID, caller.ID, g.ID, "leave", err)
		return err
	}

	err = m.groups.Mutate(ctx, g.ID,
		[]docstore.Condition{docstore.Contains(groupstore.FieldMembers, caller.ID)},
		docstore.RemoveFromSet(groupstore.FieldMembers, caller.ID),
	)
	if err != nil {
		err = m.explain(ctx, g.ID, "leave", err, func(fresh models.Group) error {
			return leaveBlocked(fresh, caller.ID)
		})
		m.denied(ctx, caller.ID, caller.ID, g.ID, "leave", err)
		return err
	}

	m.audit.MemberLeft(ctx, caller.ID, g.ID)
	return nil
}

func leaveBlocked(g models.Group, userID string) error {
	switch {
	case !g.IsMember(userID):
		return apperr.NotFound("membership")
	case g.OwnerID == userID:
		return apperr.Validation("the group owner cannot leave the group")
	}
	return nil
}

// EditGroup replaces the group's descriptive fields, size limit and
// privacy. Owner only. The new limit may not drop below the current roster.
func (m *Manager) EditGroup(ctx context.Context, caller auth.User, groupID string, in GroupInput) (models.Group, error) {
	if err := requireCaller(caller); err != nil {
		return models.Group{}, err
	}
	info, err := in.validate()
	if err != nil {
		return models.Group{}, err
	}
	g, err := m.load(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if err := editBlocked(g, caller.ID, info.MaxMembers); err != nil {
		m.denied(ctx, caller.ID, "", g.ID, "edit", err)
		return models.Group{}, err
	}

	err = m.groups.UpdateInfo(ctx, g.ID, info,
		docstore.Equals(groupstore.FieldOwner, caller.ID),
		docstore.SizeAtMost(groupstore.FieldMembers, info.MaxMembers),
	)
	if err != nil {
		err = m.explain(ctx, g.ID, "edit", err, func(fresh models.Group) error {
			return editBlocked(fresh, caller.ID, info.MaxMembers)
		})
		m.denied(ctx, caller.ID, "", g.ID, "edit", err)
		return models.Group{}, err
	}

	m.audit.GroupUpdated(ctx, caller.ID, g.ID)
	return m.load(ctx, g.ID)
}

func editBlocked(g models.Group, callerID string, newMax int) error {
	switch {
	case g.OwnerID != callerID:
		return apperr.Unauthorized("only the group owner can edit the group")
	case len(g.Members) > newMax:
		return apperr.Validation("max members cannot be lower than the current member count (%d)", len(g.Members))
	}
	return nil
}

// DeleteGroup removes the group. Owner only. Its sessions are not touched.
func (m *Manager) DeleteGroup(ctx context.Context, caller auth.User, groupID string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	g, err := m.load(ctx, groupID)
	if err != nil {
		return err
	}
	if g.OwnerID != caller.ID {
		err := apperr.Unauthorized("only the group owner can delete the group")
		m.denied(ctx, caller.ID, "", g.ID, "delete", err)
		return err
	}

	if err := m.groups.Delete(ctx, g.ID, docstore.Equals(groupstore.FieldOwner, caller.ID)); err != nil {
		err = m.explain(ctx, g.ID, "delete", err, func(fresh models.Group) error {
			if fresh.OwnerID != caller.ID {
				return apperr.Unauthorized("only the group owner can delete the group")
			}
			return nil
		})
		m.denied(ctx, caller.ID, "", g.ID, "delete", err)
		return err
	}

	m.log.Info("group deleted",
		zap.String("group_id", g.ID),
		zap.String("owner_id", caller.ID))
	m.audit.GroupDeleted(ctx, caller.ID, g.ID, g.Name)
	return nil
}

// GetGroup returns one group.
func (m *Manager) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	return m.load(ctx, groupID)
}

// ListGroups returns every group ordered by name.
func (m *Manager) ListGroups(ctx context.Context) ([]models.Group, error) {
	gs, err := m.groups.List(ctx)
	if err != nil {
		return nil, m.storeErr("list groups", err)
	}
	return gs, nil
}

// ListGroupsForMember returns the groups caller belongs to.
func (m *Manager) ListGroupsForMember(ctx context.Context, caller auth.User) ([]models.Group, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	gs, err := m.groups.ListForMember(ctx, caller.ID)
	if err != nil {
		return nil, m.storeErr("list member groups", err)
	}
	return gs, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func requireCaller(u auth.User) error {
	if u.ID == "" {
		return apperr.ErrUnauthenticated
	}
	return nil
}

func (m *Manager) load(ctx context.Context, groupID string) (models.Group, error) {
	id := normalize.ID(groupID)
	if id == "" {
		return models.Group{}, apperr.NotFound("group")
	}
	g, err := m.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.Group{}, apperr.NotFound("group")
		}
		return models.Group{}, m.storeErr("load group", err)
	}
	return g, nil
}

// explain turns a failed conditional write into the error the caller sees.
// A failed condition triggers one fresh read; classify names the blocking
// state or returns nil when the group looks writable again, which is
// reported as a conflict.
func (m *Manager) explain(ctx context.Context, groupID, op string, err error, classify func(models.Group) error) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return apperr.NotFound("group")
	case !errors.Is(err, docstore.ErrConditionFailed):
		return m.storeErr(op, err)
	}

	fresh, lerr := m.load(ctx, groupID)
	if lerr != nil {
		return lerr
	}
	if cerr := classify(fresh); cerr != nil {
		return cerr
	}
	m.log.Info("membership write lost a race",
		zap.String("op", op),
		zap.String("group_id", groupID))
	return apperr.ErrConflict
}

func (m *Manager) storeErr(op string, err error) error {
	m.log.Error("membership store failure", zap.String("op", op), zap.Error(err))
	return apperr.Store(op, err)
}

// denied records refused transitions. Store failures are logged elsewhere.
func (m *Manager) denied(ctx context.Context, actorID, targetID, groupID, action string, err error) {
	if err == nil || apperr.KindOf(err) == apperr.KindStore {
		return
	}
	m.audit.MembershipDenied(ctx, actorID, targetID, groupID, action, string(apperr.KindOf(err)))
}
