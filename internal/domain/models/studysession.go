// internal/domain/models/studysession.go
package models

import "time"

// RSVPStatus is a caller's declared attendance for one session.
type RSVPStatus string

const (
	RSVPAttending RSVPStatus = "attending"
	RSVPMaybe     RSVPStatus = "maybe"
	RSVPCannot    RSVPStatus = "cannot"
)

// RSVPStatuses lists every status in the order the RSVP sets are stored.
var RSVPStatuses = []RSVPStatus{RSVPAttending, RSVPMaybe, RSVPCannot}

// Valid reports whether s is one of the three known statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPAttending, RSVPMaybe, RSVPCannot:
		return true
	}
	return false
}

// StudySession is one scheduled meeting of a group.
//
// GroupID is a weak reference: deleting the group leaves the session in
// place. A user ID appears in at most one of Attendees, Maybes and
// CannotAttend.
type StudySession struct {
	ID        string `bson:"-" json:"id"`
	GroupID   string `bson:"group_id" json:"group_id"`
	CreatorID string `bson:"creator_id" json:"creator_id"`

	Title    string `bson:"title" json:"title"`
	Topic    string `bson:"topic" json:"topic"`
	Date     string `bson:"date" json:"date"`
	Time     string `bson:"time" json:"time"`
	Duration string `bson:"duration" json:"duration"`
	Agenda   string `bson:"agenda" json:"agenda"`

	Attendees    []string `bson:"attendees" json:"attendees"`
	Maybes       []string `bson:"maybes" json:"maybes"`
	CannotAttend []string `bson:"cannot_attend" json:"cannot_attend"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// StatusOf returns the user's current RSVP, if any.
func (s StudySession) StatusOf(userID string) (RSVPStatus, bool) {
	switch {
	case contains(s.Attendees, userID):
		return RSVPAttending, true
	case contains(s.Maybes, userID):
		return RSVPMaybe, true
	case contains(s.CannotAttend, userID):
		return RSVPCannot, true
	}
	return "", false
}
