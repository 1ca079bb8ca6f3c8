package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	"github.com/dalemusser/studycircle/internal/app/system/normalize"
	"github.com/dalemusser/studycircle/internal/domain/models"
)

// Collection is the document collection holding accounts.
const Collection = "users"

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errEmailNeeded    = errors.New("email is required")
	errHashNeeded     = errors.New("password hash is required")
)

// Store reads and writes accounts through a docstore.Store.
type Store struct {
	ds docstore.Store
}

// New returns a Store backed by ds.
func New(ds docstore.Store) *Store {
	return &Store{ds: ds}
}

// GetByID loads a user. Returns docstore.ErrNotFound if not found.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	doc, err := s.ds.Get(ctx, Collection, id)
	if err != nil {
		return models.User{}, err
	}
	return decode(doc)
}

// GetByEmail looks up a user by case-insensitive email. Returns
// docstore.ErrNotFound if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	docs, err := s.ds.Query(ctx, Collection, "email", normalize.Email(email))
	if err != nil {
		return models.User{}, err
	}
	if len(docs) == 0 {
		return models.User{}, docstore.ErrNotFound
	}
	return decode(docs[0])
}

// Create inserts a new account after normalizing the email and name.
//
// The lookup before the insert gives the in-memory store its uniqueness;
// on MongoDB the unique index on email is what actually enforces it.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.Email = normalize.Email(u.Email)
	u.Name = normalize.Name(u.Name)
	u.Department = normalize.Name(u.Department)
	u.Semester = normalize.Name(u.Semester)
	if u.Email == "" {
		return models.User{}, errEmailNeeded
	}
	if u.PasswordHash == "" {
		return models.User{}, errHashNeeded
	}

	if _, err := s.GetByEmail(ctx, u.Email); err == nil {
		return models.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return models.User{}, err
	}

	u.CreatedAt = time.Now().UTC()
	id, err := s.ds.Create(ctx, Collection, docstore.Fields{
		"email":         u.Email,
		"name":          u.Name,
		"department":    u.Department,
		"semester":      u.Semester,
		"password_hash": u.PasswordHash,
		"created_at":    u.CreatedAt,
	})
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	u.ID = id
	return u, nil
}

// Profile holds the self-editable account fields.
type Profile struct {
	Name       string
	Department string
	Semester   string
}

// UpdateProfile sets name, department and semester on the account and
// returns the updated user. Email, password hash and creation time are not
// touched. Returns docstore.ErrNotFound if the account does not exist.
func (s *Store) UpdateProfile(ctx context.Context, id string, p Profile) (models.User, error) {
	err := s.ds.UpdateFields(ctx, Collection, id, docstore.Fields{
		"name":       normalize.Name(p.Name),
		"department": normalize.Name(p.Department),
		"semester":   normalize.Name(p.Semester),
	})
	if err != nil {
		return models.User{}, err
	}
	return s.GetByID(ctx, id)
}

func decode(doc docstore.Document) (models.User, error) {
	var u models.User
	if err := doc.Decode(&u); err != nil {
		return models.User{}, err
	}
	u.ID = doc.ID
	return u, nil
}
