// internal/app/store/audit/store.go
package audit

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
)

// Collection is the document collection holding audit events.
const Collection = "audit_events"

// Event categories
const (
	CategoryAuth       = "auth"
	CategoryMembership = "membership"
	CategorySession    = "session"
)

// Auth event types
const (
	EventRegistered              = "registered"
	EventLoginSuccess            = "login_success"
	EventLoginFailedUserNotFound = "login_failed_user_not_found"
	EventLoginFailedPassword     = "login_failed_wrong_password"
	EventLoginFailedRateLimit    = "login_failed_rate_limit"
	EventLogout                  = "logout"
)

// Membership event types
const (
	EventGroupCreated     = "group_created"
	EventGroupUpdated     = "group_updated"
	EventGroupDeleted     = "group_deleted"
	EventMemberJoined     = "member_joined"
	EventJoinRequested    = "join_requested"
	EventRequestApproved  = "request_approved"
	EventRequestRejected  = "request_rejected"
	EventMemberLeft       = "member_left"
	EventMembershipDenied = "membership_denied"
)

// Session event types
const (
	EventSessionCreated   = "session_created"
	EventSessionCancelled = "session_cancelled"
	EventRSVPSet          = "rsvp_set"
)

// Event represents an audit event.
type Event struct {
	ID        string    `bson:"-" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	// Event classification
	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// Who and what
	ActorID      string `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	TargetUserID string `bson:"target_user_id,omitempty" json:"target_user_id,omitempty"`
	GroupID      string `bson:"group_id,omitempty" json:"group_id,omitempty"`
	SessionID    string `bson:"session_id,omitempty" json:"session_id,omitempty"`

	IP string `bson:"ip,omitempty" json:"ip,omitempty"`

	// Outcome
	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// Store manages audit event records.
type Store struct {
	ds docstore.Store
}

// New creates a new audit Store.
func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	f := docstore.Fields{
		"timestamp":  event.Timestamp,
		"category":   event.Category,
		"event_type": event.EventType,
		"success":    event.Success,
	}
	optional := map[string]string{
		"actor_id":       event.ActorID,
		"target_user_id": event.TargetUserID,
		"group_id":       event.GroupID,
		"session_id":     event.SessionID,
		"ip":             event.IP,
		"failure_reason": event.FailureReason,
	}
	for k, v := range optional {
		if v != "" {
			f[k] = v
		}
	}
	if len(event.Details) > 0 {
		f["details"] = event.Details
	}
	_, err := s.ds.Create(ctx, Collection, f)
	return err
}

// ForGroup returns the most recent events about groupID, newest first.
func (s *Store) ForGroup(ctx context.Context, groupID string, limit int) ([]Event, error) {
	docs, err := s.ds.Query(ctx, Collection, "group_id", groupID)
	if err != nil {
		return nil, err
	}
	return newestFirst(docs, limit)
}

// ByCategory returns the most recent events in a category, newest first.
func (s *Store) ByCategory(ctx context.Context, category string, limit int) ([]Event, error) {
	docs, err := s.ds.Query(ctx, Collection, "category", category)
	if err != nil {
		return nil, err
	}
	return newestFirst(docs, limit)
}

func newestFirst(docs []docstore.Document, limit int) ([]Event, error) {
	events := make([]Event, 0, len(docs))
	for _, d := range docs {
		var e Event
		if err := d.Decode(&e); err != nil {
			return nil, err
		}
		e.ID = d.ID
		events = append(events, e)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if limit <= 0 {
		limit = 100
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// PruneBefore deletes events older than cutoff and returns how many went.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	docs, err := s.ds.List(ctx, Collection)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range docs {
		var e Event
		if err := d.Decode(&e); err != nil {
			return n, err
		}
		if !e.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.ds.Delete(ctx, Collection, d.ID); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}
