package ops

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/db"
	"github.com/hpungsan/flow/internal/errors"
	"github.com/hpungsan/flow/internal/nlp"
)

// testNow is a Thursday.
var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	return cfg
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestParser(t *testing.T, cfg *config.Config) *Parser {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	p, err := NewParser(cfg, nlp.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return p
}

// addTask stores text and returns the new ID.
func addTask(t *testing.T, database *sql.DB, parser *Parser, text string) string {
	t.Helper()
	out, err := Add(context.Background(), database, parser, AddInput{Text: text})
	require.NoError(t, err)
	return out.ID
}

func stringPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestRequireID(t *testing.T) {
	id, err := requireID("  01ABC  ")
	require.NoError(t, err)
	assert.Equal(t, "01ABC", id)

	for _, in := range []string{"", "   "} {
		_, err := requireID(in)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "input %q", in)
	}
}

func TestGenerateULID(t *testing.T) {
	a, err := generateULID()
	require.NoError(t, err)
	b, err := generateULID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	_, err = ulid.Parse(a)
	assert.NoError(t, err)
}

func TestCheckCancelled(t *testing.T) {
	assert.NoError(t, checkCancelled(context.Background(), "x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := checkCancelled(ctx, "export")
	assert.True(t, errors.Is(err, errors.ErrCancelled))
	assert.Contains(t, err.Error(), "export cancelled")
}
