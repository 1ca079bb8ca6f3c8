// internal/domain/models/group.go
package models

import (
	"time"
)

// Group size bounds accepted at create and edit time.
const (
	GroupSizeMin = 3
	GroupSizeMax = 10
)

// Group is a study group: an owner, a bounded member roster and, for
// private groups, a queue of pending join requests.
//
// NOTE:
//   - Members and JoinRequests hold user IDs (never emails) and are disjoint.
//   - OwnerID is always in Members; the owner cannot leave.
//   - The ID lives in the document's _id and is assigned by the store.
type Group struct {
	ID           string   `bson:"-" json:"id"`
	OwnerID      string   `bson:"owner_id" json:"owner_id"`
	Members      []string `bson:"members" json:"members"`
	JoinRequests []string `bson:"join_requests" json:"join_requests"`
	MaxMembers   int      `bson:"max_members" json:"max_members"`
	Private      bool     `bson:"private" json:"private"`

	Name        string `bson:"name" json:"name"`
	NameCI      string `bson:"name_ci" json:"-"`
	Department  string `bson:"department" json:"department"`
	Course      string `bson:"course" json:"course"`
	CourseCode  string `bson:"course_code" json:"course_code"`
	Description string `bson:"description" json:"description"`
	Topics      string `bson:"topics" json:"topics"`
	Schedule    string `bson:"schedule" json:"schedule"`
	Location    string `bson:"location" json:"location"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsMember reports whether userID is on the roster.
func (g Group) IsMember(userID string) bool {
	return contains(g.Members, userID)
}

// HasRequest reports whether userID has a pending join request.
func (g Group) HasRequest(userID string) bool {
	return contains(g.JoinRequests, userID)
}

// IsFull reports whether the roster has reached MaxMembers.
func (g Group) IsFull() bool {
	return len(g.Members) >= g.MaxMembers
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
