package groupstore_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	groupstore "github.com/dalemusser/studycircle/internal/app/store/groups"
	"github.com/dalemusser/studycircle/internal/testutil"
)

func info(name string) groupstore.Info {
	return groupstore.Info{
		Name:       name,
		Department: "Mathematics",
		Course:     "Linear Algebra",
		CourseCode: "MATH 221",
		MaxMembers: 4,
	}
}

func TestStore_Create(t *testing.T) {
	store := groupstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, "owner-1", info("Eigen Friends"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if g.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if g.OwnerID != "owner-1" {
		t.Errorf("OwnerID: got %q, want owner-1", g.OwnerID)
	}
	if len(g.Members) != 1 || g.Members[0] != "owner-1" {
		t.Errorf("Members: got %v, want [owner-1]", g.Members)
	}
	if len(g.JoinRequests) != 0 {
		t.Errorf("JoinRequests: got %v, want empty", g.JoinRequests)
	}
	if g.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if g.CreatedAt.IsZero() || g.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	store := groupstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, "000000000000000000000000")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetByID_RejectsCorruptDocument(t *testing.T) {
	ds := docstore.NewMemory()
	store := groupstore.New(ds)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := ds.Create(ctx, groupstore.Collection, docstore.Fields{
		"owner_id":    "o",
		"members":     []string{"o"},
		"max_members": 3,
		"private":     false,
		// join_requests missing
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.GetByID(ctx, id)
	if !errors.Is(err, groupstore.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestStore_List_OrderedByFoldedName(t *testing.T) {
	store := groupstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, n := range []string{"zeta", "Alpha", "beta"} {
		if _, err := store.Create(ctx, "o", info(n)); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"Alpha", "beta", "zeta"}
	if len(list) != len(want) {
		t.Fatalf("List: got %d groups, want %d", len(list), len(want))
	}
	for i, g := range list {
		if g.Name != want[i] {
			t.Errorf("List[%d]: got %q, want %q", i, g.Name, want[i])
		}
	}
}

func TestStore_ListForMember(t *testing.T) {
	store := groupstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g1, _ := store.Create(ctx, "alice", info("One"))
	_, _ = store.Create(ctx, "bob", info("Two"))
	if err := store.Mutate(ctx, g1.ID, nil, docstore.AddToSet(groupstore.FieldMembers, "carol")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		user string
		want int
	}{
		{"alice", 1},
		{"bob", 1},
		{"carol", 1},
		{"dave", 0},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			got, err := store.ListForMember(ctx, tt.user)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("ListForMember(%s): got %d, want %d", tt.user, len(got), tt.want)
			}
		})
	}
}

func TestStore_UpdateInfo(t *testing.T) {
	store := groupstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, _ := store.Create(ctx, "o", info("Before"))
	upd := info("After")
	upd.Private = true
	upd.MaxMembers = 7

	if err := store.UpdateInfo(ctx, g.ID, upd, docstore.Equals(groupstore.FieldOwner, "o")); err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}
	got, _ := store.GetByID(ctx, g.ID)
	if got.Name != "After" || got.NameCI == g.NameCI || !got.Private || got.MaxMembers != 7 {
		t.Errorf("unexpected group after update: %+v", got)
	}
	if len(got.Members) != 1 || got.OwnerID != "o" {
		t.Error("update must not touch the owner or rosters")
	}

	err := store.UpdateInfo(ctx, g.ID, upd, docstore.Equals(groupstore.FieldOwner, "intruder"))
	if !errors.Is(err, docstore.ErrConditionFailed) {
		t.Errorf("expected ErrConditionFailed, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := groupstore.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, _ := store.Create(ctx, "o", info("Gone"))
	if err := store.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, g.ID); !errors.Is(err, docstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_Mongo_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(docstore.NewMongo(db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, "owner", info("Mongo Group"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.MaxMembers != 4 || got.OwnerID != "owner" || len(got.Members) != 1 {
		t.Errorf("unexpected group: %+v", got)
	}
}
