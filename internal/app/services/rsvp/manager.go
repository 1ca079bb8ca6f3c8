// Package rsvp manages study sessions and the per-user attendance status
// recorded on each one.
package rsvp

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	groupstore "github.com/dalemusser/studycircle/internal/app/store/groups"
	sessionstore "github.com/dalemusser/studycircle/internal/app/store/studysessions"
	"github.com/dalemusser/studycircle/internal/app/system/apperr"
	"github.com/dalemusser/studycircle/internal/app/system/auditlog"
	"github.com/dalemusser/studycircle/internal/app/system/auth"
	"github.com/dalemusser/studycircle/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studycircle/internal/app/system/normalize"
	"github.com/dalemusser/studycircle/internal/domain/models"
	"go.uber.org/zap"
)

const maxField = 4000

// SessionInput carries the caller-supplied fields for a new session.
type SessionInput struct {
	Title    string `json:"title"`
	Topic    string `json:"topic"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration string `json:"duration"`
	Agenda   string `json:"agenda"`
}

func (in SessionInput) validate() (sessionstore.Details, error) {
	d := sessionstore.Details{
		Title:    htmlsanitize.PlainText(in.Title),
		Topic:    htmlsanitize.PlainText(in.Topic),
		Date:     strings.TrimSpace(in.Date),
		Time:     strings.TrimSpace(in.Time),
		Duration: htmlsanitize.PlainText(in.Duration),
		Agenda:   htmlsanitize.PlainText(in.Agenda),
	}
	for _, f := range []struct{ label, value string }{
		{"title", d.Title},
		{"topic", d.Topic},
		{"date", d.Date},
		{"time", d.Time},
	} {
		if f.value == "" {
			return sessionstore.Details{}, apperr.Validation("%s is required", f.label)
		}
	}
	for _, v := range []string{d.Title, d.Topic, d.Date, d.Time, d.Duration, d.Agenda} {
		if utf8.RuneCountInString(v) > maxField {
			return sessionstore.Details{}, apperr.Validation("session fields must be at most %d characters", maxField)
		}
	}
	return d, nil
}

// Manager runs the session and RSVP transitions. It holds no mutable
// state and may be shared between goroutines.
type Manager struct {
	sessions *sessionstore.Store
	groups   *groupstore.Store
	audit    *auditlog.Logger
	log      *zap.Logger
}

// New builds a Manager. audit may be nil.
func New(sessions *sessionstore.Store, groups *groupstore.Store, audit *auditlog.Logger, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{sessions: sessions, groups: groups, audit: audit, log: log}
}

// CreateSession schedules a session for a group the caller belongs to.
func (m *Manager) CreateSession(ctx context.Context, caller auth.User, groupID string, in SessionInput) (models.StudySession, error) {
	if caller.ID == "" {
		return models.StudySession{}, apperr.ErrUnauthenticated
	}
	d, err := in.validate()
	if err != nil {
		return models.StudySession{}, err
	}
	g, err := m.loadGroup(ctx, groupID)
	if err != nil {
		return models.StudySession{}, err
	}
	if !g.IsMember(caller.ID) {
		return models.StudySession{}, apperr.Unauthorized("only group members can schedule sessions")
	}

	s, err := m.sessions.Create(ctx, g.ID, caller.ID, d)
	if err != nil {
		return models.StudySession{}, m.storeErr("create session", err)
	}
	m.audit.SessionCreated(ctx, caller.ID, g.ID, s.ID)
	return s, nil
}

// SetRsvp records caller's status on the session, replacing any earlier one.
// Setting the same status twice is a no-op.
func (m *Manager) SetRsvp(ctx context.Context, caller auth.User, sessionID string, status models.RSVPStatus) (models.StudySession, error) {
	if caller.ID == "" {
		return models.StudySession{}, apperr.ErrUnauthenticated
	}
	status = models.RSVPStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return models.StudySession{}, apperr.Validation("status must be attending, maybe or cannot")
	}
	id := normalize.ID(sessionID)
	if id == "" {
		return models.StudySession{}, apperr.NotFound("session")
	}

	if err := m.sessions.SetRSVP(ctx, id, caller.ID, status); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.StudySession{}, apperr.NotFound("session")
		}
		return models.StudySession{}, m.storeErr("set rsvp", err)
	}
	m.audit.RSVPSet(ctx, caller.ID, id, string(status))
	return m.GetSession(ctx, id)
}

// CancelSession deletes a session. Only its creator may cancel it.
func (m *Manager) CancelSession(ctx context.Context, caller auth.User, sessionID string) error {
	if caller.ID == "" {
		return apperr.ErrUnauthenticated
	}
	s, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.CreatorID != caller.ID {
		return apperr.Unauthorized("only the session creator can cancel it")
	}

	err = m.sessions.Delete(ctx, s.ID, docstore.Equals(sessionstore.FieldCreator, caller.ID))
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return apperr.NotFound("session")
	case errors.Is(err, docstore.ErrConditionFailed):
		// creator_id is never rewritten, so this only happens if the
		// document was replaced underneath us.
		return apperr.Unauthorized("only the session creator can cancel it")
	case err != nil:
		return m.storeErr("cancel session", err)
	}
	m.audit.SessionCancelled(ctx, caller.ID, s.GroupID, s.ID)
	return nil
}

// GetSession returns one session.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (models.StudySession, error) {
	id := normalize.ID(sessionID)
	if id == "" {
		return models.StudySession{}, apperr.NotFound("session")
	}
	s, err := m.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return models.StudySession{}, apperr.NotFound("session")
		}
		return models.StudySession{}, m.storeErr("load session", err)
	}
	return s, nil
}

// ListSessions returns the sessions of an existing group.
func (m *Manager) ListSessions(ctx context.Context, groupID string) ([]models.StudySession, error) {
	g, err := m.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ss, err := m.sessions.ListByGroup(ctx, g.ID)
	if err != nil {
		return nil, m.storeErr("list sessions", err)
	}
	return ss, nil
}

func (m *Manager) loadGroup(ctx context.Context, groupID string) (models.Group, error) {
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

func (m *Manager) storeErr(op string, err error) error {
	m.log.Error("rsvp store failure", zap.String("op", op), zap.Error(err))
	return apperr.Store(op, err)
}
