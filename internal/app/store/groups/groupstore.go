// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	"github.com/dalemusser/studycircle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Collection is the document collection holding groups.
const Collection = "groups"

// Field names used in conditions and set ops.
const (
	FieldOwner        = "owner_id"
	FieldMembers      = "members"
	FieldJoinRequests = "join_requests"
	FieldMaxMembers   = "max_members"
	FieldPrivate      = "private"
)

// requiredFields must be present on every stored group. A document missing
// any of them is corrupt and is never defaulted.
var requiredFields = []string{FieldOwner, FieldMembers, FieldJoinRequests, FieldMaxMembers, FieldPrivate}

// ErrCorrupt is returned when a stored group lacks a required field.
var ErrCorrupt = errors.New("group document is missing required fields")

// Store reads and writes group documents through a docstore.Store.
type Store struct {
	ds docstore.Store
}

// New returns a Store backed by ds.
func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// Info is the replaceable part of a group: everything but the owner and the
// two rosters.
type Info struct {
	Name        string
	Department  string
	Course      string
	CourseCode  string
	Description string
	Topics      string
	Schedule    string
	Location    string
	MaxMembers  int
	Private     bool
}

func (in Info) fields() docstore.Fields {
	return docstore.Fields{
		"name":          in.Name,
		"name_ci":       text.Fold(in.Name),
		"department":    in.Department,
		"course":        in.Course,
		"course_code":   in.CourseCode,
		"description":   in.Description,
		"topics":        in.Topics,
		"schedule":      in.Schedule,
		"location":      in.Location,
		FieldMaxMembers: in.MaxMembers,
		FieldPrivate:    in.Private,
	}
}

// Create inserts a group owned by ownerID with the owner as its only member.
func (s *Store) Create(ctx context.Context, ownerID string, in Info) (models.Group, error) {
	now := time.Now().UTC()
	f := in.fields()
	f[FieldOwner] = ownerID
	f[FieldMembers] = []string{ownerID}
	f[FieldJoinRequests] = []string{}
	f["created_at"] = now
	f["updated_at"] = now

	id, err := s.ds.Create(ctx, Collection, f)
	if err != nil {
		return models.Group{}, err
	}
	return s.GetByID(ctx, id)
}

// GetByID loads a group. Returns docstore.ErrNotFound if it does not exist.
func (s *Store) GetByID(ctx context.Context, id string) (models.Group, error) {
	doc, err := s.ds.Get(ctx, Collection, id)
	if err != nil {
		return models.Group{}, err
	}
	return decode(doc)
}

// List returns every group ordered by folded name, then id.
func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	docs, err := s.ds.List(ctx, Collection)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs)
}

// ListForMember returns the groups whose roster contains userID.
func (s *Store) ListForMember(ctx context.Context, userID string) ([]models.Group, error) {
	docs, err := s.ds.Query(ctx, Collection, FieldMembers, userID)
	if err != nil {
		return nil, err
	}
	return decodeAll(docs)
}

// Mutate applies set ops to the rosters when every condition holds.
func (s *Store) Mutate(ctx context.Context, id string, conds []docstore.Condition, ops ...docstore.SetOp) error {
	return s.ds.MutateSets(ctx, Collection, id, conds, ops)
}

// UpdateInfo replaces the descriptive fields, max_members and private.
func (s *Store) UpdateInfo(ctx context.Context, id string, in Info, conds ...docstore.Condition) error {
	f := in.fields()
	f["updated_at"] = time.Now().UTC()
	return s.ds.UpdateFields(ctx, Collection, id, f, conds...)
}

// Delete removes the group document only; its sessions are left in place.
func (s *Store) Delete(ctx context.Context, id string, conds ...docstore.Condition) error {
	return s.ds.Delete(ctx, Collection, id, conds...)
}

func decode(doc docstore.Document) (models.Group, error) {
	for _, f := range requiredFields {
		if !doc.Has(f) {
			return models.Group{}, fmt.Errorf("%w: %s lacks %q", ErrCorrupt, doc.ID, f)
		}
	}
	var g models.Group
	if err := doc.Decode(&g); err != nil {
		return models.Group{}, err
	}
	g.ID = doc.ID
	if g.Members == nil {
		g.Members = []string{}
	}
	if g.JoinRequests == nil {
		g.JoinRequests = []string{}
	}
	return g, nil
}

func decodeAll(docs []docstore.Document) ([]models.Group, error) {
	out := make([]models.Group, 0, len(docs))
	for _, d := range docs {
		g, err := decode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NameCI != out[j].NameCI {
			return out[i].NameCI < out[j].NameCI
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
