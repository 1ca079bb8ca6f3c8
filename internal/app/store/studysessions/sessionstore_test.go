package sessionstore_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	sessionstore "github.com/dalemusser/studycircle/internal/app/store/studysessions"
	"github.com/dalemusser/studycircle/internal/domain/models"
	"github.com/dalemusser/studycircle/internal/testutil"
)

var details = sessionstore.Details{
	Title: "Midterm review",
	Topic: "Chapters 1-4",
	Date:  "2026-11-02",
	Time:  "18:00",
}

func TestStore_Create(t *testing.T) {
	store := sessionstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ss, err := store.Create(ctx, "group-1", "alice", details)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ss.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if ss.GroupID != "group-1" || ss.CreatorID != "alice" {
		t.Errorf("unexpected references: %+v", ss)
	}
	if len(ss.Attendees)+len(ss.Maybes)+len(ss.CannotAttend) != 0 {
		t.Error("expected all RSVP sets to start empty")
	}
	if ss.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_SetRSVP_MovesBetweenSets(t *testing.T) {
	store := sessionstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ss, _ := store.Create(ctx, "g", "alice", details)

	steps := []models.RSVPStatus{models.RSVPMaybe, models.RSVPAttending, models.RSVPCannot, models.RSVPCannot}
	for _, st := range steps {
		if err := store.SetRSVP(ctx, ss.ID, "bob", st); err != nil {
			t.Fatalf("SetRSVP(%s) failed: %v", st, err)
		}
		got, err := store.GetByID(ctx, ss.ID)
		if err != nil {
			t.Fatal(err)
		}
		status, ok := got.StatusOf("bob")
		if !ok || status != st {
			t.Errorf("after SetRSVP(%s): got %q (present=%v)", st, status, ok)
		}
		if n := len(got.Attendees) + len(got.Maybes) + len(got.CannotAttend); n != 1 {
			t.Errorf("after SetRSVP(%s): bob appears %d times across sets", st, n)
		}
	}
}

func TestStore_SetRSVP_Errors(t *testing.T) {
	store := sessionstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ss, _ := store.Create(ctx, "g", "alice", details)
	if err := store.SetRSVP(ctx, ss.ID, "bob", "sometimes"); err == nil {
		t.Error("expected error for unknown status")
	}
	err := store.SetRSVP(ctx, "000000000000000000000000", "bob", models.RSVPMaybe)
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListByGroup(t *testing.T) {
	store := sessionstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, _ = store.Create(ctx, "g1", "a", details)
	_, _ = store.Create(ctx, "g1", "a", details)
	_, _ = store.Create(ctx, "g2", "a", details)

	tests := []struct {
		group string
		want  int
	}{
		{"g1", 2},
		{"g2", 1},
		{"g3", 0},
	}
	for _, tt := range tests {
		got, err := store.ListByGroup(ctx, tt.group)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("ListByGroup(%s): got %d, want %d", tt.group, len(got), tt.want)
		}
	}
}

func TestStore_Delete_GuardedByCreator(t *testing.T) {
	store := sessionstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ss, _ := store.Create(ctx, "g", "alice", details)
	err := store.Delete(ctx, ss.ID, docstore.Equals(sessionstore.FieldCreator, "bob"))
	if !errors.Is(err, docstore.ErrConditionFailed) {
		t.Fatalf("expected ErrConditionFailed, got %v", err)
	}
	if err := store.Delete(ctx, ss.ID, docstore.Equals(sessionstore.FieldCreator, "alice")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}

func TestStore_GetByID_RejectsCorruptDocument(t *testing.T) {
	ds := docstore.NewMemory()
	store := sessionstore.New(ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, _ := ds.Create(ctx, sessionstore.Collection, docstore.Fields{
		"group_id":   "g",
		"creator_id": "a",
		"attendees":  []string{},
	})
	if _, err := store.GetByID(ctx, id); !errors.Is(err, sessionstore.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestStore_Mongo_SetRSVP(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(docstore.NewMongo(db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ss, err := store.Create(ctx, "g", "alice", details)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, st := range []models.RSVPStatus{models.RSVPAttending, models.RSVPMaybe} {
		if err := store.SetRSVP(ctx, ss.ID, "bob", st); err != nil {
			t.Fatalf("SetRSVP failed: %v", err)
		}
	}
	got, _ := store.GetByID(ctx, ss.ID)
	if status, _ := got.StatusOf("bob"); status != models.RSVPMaybe || len(got.Attendees) != 0 {
		t.Errorf("unexpected session: %+v", got)
	}
}
