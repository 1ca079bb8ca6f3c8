package workers

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/studycircle/internal/app/store/audit"
	"github.com/dalemusser/studycircle/internal/app/store/docstore"
	"go.uber.org/zap"
)

func TestAuditRetention_Prune(t *testing.T) {
	ctx := context.Background()
	store := audit.New(docstore.NewMemory())
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	ages := []time.Duration{time.Hour, 24 * time.Hour, 40 * 24 * time.Hour, 400 * 24 * time.Hour}
	for _, age := range ages {
		err := store.Log(ctx, audit.Event{
			Timestamp: now.Add(-age),
			Category:  audit.CategoryMembership,
			EventType: audit.EventMemberJoined,
			GroupID:   "g1",
			Success:   true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	w := NewAuditRetention(store, zap.NewNop(), time.Hour, 30*24*time.Hour)
	w.now = func() time.Time { return now }

	if got := w.Prune(ctx); got != 2 {
		t.Errorf("first prune removed %d, want 2", got)
	}
	if got := w.Prune(ctx); got != 0 {
		t.Errorf("second prune removed %d, want 0", got)
	}

	left, err := store.ForGroup(ctx, "g1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 2 {
		t.Errorf("events left: got %d, want 2", len(left))
	}
}

func TestAuditRetention_StartStop(t *testing.T) {
	w := NewAuditRetention(audit.New(docstore.NewMemory()), zap.NewNop(), time.Millisecond, time.Hour)
	w.Start()
	time.Sleep(5 * time.Millisecond)
	w.Stop()
	w.Stop()
}
