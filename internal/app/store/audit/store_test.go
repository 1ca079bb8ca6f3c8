package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/studycircle/internal/app/store/audit"
	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	"github.com/dalemusser/studycircle/internal/testutil"
)

func TestStore_Log(t *testing.T) {
	store := audit.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	event := audit.Event{
		Category:     audit.CategoryMembership,
		EventType:    audit.EventRequestApproved,
		ActorID:      "owner",
		TargetUserID: "alice",
		GroupID:      "g1",
		Success:      true,
		Details:      map[string]string{"group_name": "Algebra"},
	}
	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.ForGroup(ctx, "g1", 10)
	if err != nil {
		t.Fatalf("ForGroup failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if got.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
	if got.TargetUserID != "alice" || got.ActorID != "owner" {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.Details["group_name"] != "Algebra" {
		t.Errorf("Details: got %v", got.Details)
	}
}

func TestStore_ByCategory_NewestFirstWithLimit(t *testing.T) {
	store := audit.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := store.Log(ctx, audit.Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginSuccess,
			Success:   true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	_ = store.Log(ctx, audit.Event{Category: audit.CategorySession, EventType: audit.EventRSVPSet, Success: true})

	events, err := store.ByCategory(ctx, audit.CategoryAuth, 3)
	if err != nil {
		t.Fatalf("ByCategory failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.After(events[i-1].Timestamp) {
			t.Errorf("events not newest first at %d", i)
		}
	}
	if !events[0].Timestamp.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("newest event: got %v", events[0].Timestamp)
	}
}

func TestStore_ForGroup_Empty(t *testing.T) {
	store := audit.New(docstore.NewMemory())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events, err := store.ForGroup(ctx, "nothing", 10)
	if err != nil {
		t.Fatalf("ForGroup failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestStore_Mongo_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(docstore.NewMongo(db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Log(ctx, audit.Event{
		Category:      audit.CategoryMembership,
		EventType:     audit.EventMembershipDenied,
		GroupID:       "g",
		FailureReason: "group_full",
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	events, err := store.ForGroup(ctx, "g", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].FailureReason != "group_full" {
		t.Errorf("unexpected events: %+v", events)
	}
}
