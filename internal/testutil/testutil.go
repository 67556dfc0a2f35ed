package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/studyspace/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool holds a single connection, which keeps the database alive until
// it is closed.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(":memory:")
	require.NoError(t, err)
	return d.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// FixedClock returns a clock function that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Clock is a settable clock for tests that move through time.
type Clock struct {
	Now time.Time
}

func (c *Clock) Func() func() time.Time {
	return func() time.Time { return c.Now }
}

func (c *Clock) Advance(d time.Duration) {
	c.Now = c.Now.Add(d)
}
