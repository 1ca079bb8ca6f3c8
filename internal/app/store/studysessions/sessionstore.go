// internal/app/store/studysessions/sessionstore.go
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	"github.com/dalemusser/studycircle/internal/domain/models"
)

// Collection is the document collection holding study sessions.
const Collection = "study_sessions"

const (
	FieldGroup        = "group_id"
	FieldCreator      = "creator_id"
	FieldAttendees    = "attendees"
	FieldMaybes       = "maybes"
	FieldCannotAttend = "cannot_attend"
)

var requiredFields = []string{FieldGroup, FieldCreator, FieldAttendees, FieldMaybes, FieldCannotAttend}

// ErrCorrupt is returned when a stored session lacks a required field.
var ErrCorrupt = errors.New("session document is missing required fields")

// RSVPField maps a status to the set that records it.
func RSVPField(s models.RSVPStatus) string {
	switch s {
	case models.RSVPAttending:
		return FieldAttendees
	case models.RSVPMaybe:
		return FieldMaybes
	case models.RSVPCannot:
		return FieldCannotAttend
	}
	return ""
}

// Details are the caller-supplied descriptive fields of a session.
type Details struct {
	Title    string
	Topic    string
	Date     string
	Time     string
	Duration string
	Agenda   string
}

// Store reads and writes study-session documents through a docstore.Store.
type Store struct {
	ds docstore.Store
}

// New returns a Store backed by ds.
func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Create inserts a session for groupID with all RSVP sets empty.
func (s *Store) Create(ctx context.Context, groupID, creatorID string, d Details) (models.StudySession, error) {
	id, err := s.ds.Create(ctx, Collection, docstore.Fields{
		FieldGroup:        groupID,
		FieldCreator:      creatorID,
		"title":           d.Title,
		"topic":           d.Topic,
		"date":            d.Date,
		"time":            d.Time,
		"duration":        d.Duration,
		"agenda":          d.Agenda,
		FieldAttendees:    []string{},
		FieldMaybes:       []string{},
		FieldCannotAttend: []string{},
		"created_at":      time.Now().UTC(),
	})
	if err != nil {
		return models.StudySession{}, err
	}
	return s.GetByID(ctx, id)
}

// GetByID loads a session. Returns docstore.ErrNotFound if it does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (models.StudySession, error) {
	doc, err := s.ds.Get(ctx, Collection, id)
	if err != nil {
		return models.StudySession{}, err
	}
	return decode(doc)
}

// ListByGroup returns the sessions that reference groupID, oldest first.
func (s *Store) ListByGroup(ctx context.Context, groupID string) ([]models.StudySession, error) {
	docs, err := s.ds.Query(ctx, Collection, FieldGroup, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]models.StudySession, 0, len(docs))
	for _, d := range docs {
		ss, err := decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, nil
}

// SetRSVP moves userID into the set for status, clearing it from the other
// two, in a single write.
func (s *Store) SetRSVP(ctx context.Context, id, userID string, status models.RSVPStatus) error {
	target := RSVPField(status)
	if target == "" {
		return fmt.Errorf("unknown rsvp status %q", status)
	}
	ops := []docstore.SetOp{
		docstore.RemoveFromSet(FieldAttendees, userID),
		docstore.RemoveFromSet(FieldMaybes, userID),
		docstore.RemoveFromSet(FieldCannotAttend, userID),
		docstore.AddToSet(target, userID),
	}
	return s.ds.MutateSets(ctx, Collection, id, nil, ops)
}

// Delete removes the session when every condition holds.
func (s *Store) Delete(ctx context.Context, id string, conds ...docstore.Condition) error {
	return s.ds.Delete(ctx, Collection, id, conds...)
}

func decode(doc docstore.Document) (models.StudySession, error) {
	for _, f := range requiredFields {
		if !doc.Has(f) {
			return models.StudySession{}, fmt.Errorf("%w: %s lacks %q", ErrCorrupt, doc.ID, f)
		}
	}
	var ss models.StudySession
	if err := doc.Decode(&ss); err != nil {
		return models.StudySession{}, err
	}
	ss.ID = doc.ID
	if ss.Attendees == nil {
		ss.Attendees = []string{}
	}
	if ss.Maybes == nil {
		ss.Maybes = []string{}
	}
	if ss.CannotAttend == nil {
		ss.CannotAttend = []string{}
	}
	return ss, nil
}
