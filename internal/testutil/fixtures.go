package testutil

import (
	"testing"

	"github.com/dalemusser/studycircle/internal/app/store/docstore"
)

// EachDocStore runs fn once against the in-memory store and once against a
// fresh MongoDB database. The mongo subtest is skipped when no server is
// reachable.
func EachDocStore(t *testing.T, fn func(t *testing.T, ds docstore.Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) {
		fn(t, docstore.NewMemory())
	})
	t.Run("mongo", func(t *testing.T) {
		fn(t, docstore.NewMongo(SetupTestDB(t)))
	})
}
