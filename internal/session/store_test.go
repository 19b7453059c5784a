package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"kodo/internal/mode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	sess := New("demo")
	sess.Append(Turn{
		Role:    RoleUser,
		Content: "rename the handler",
		Mode:    mode.ModeBuild,
	})
	sess.Append(Turn{
		Role:    RoleAssistant,
		Content: "Renaming now.",
		ToolCalls: []ToolCall{
			{ID: "call-1", Name: "edit", Args: map[string]any{
				"path": "main.go", "old_string": "Handler", "new_string": "Serve",
			}},
		},
		Outcomes: []ToolOutcome{
			{CallID: "call-1", Name: "edit", Content: "Edited main.go", Status: "ok", DurationMS: 12},
		},
		Mode: mode.ModeBuild,
	})
	sess.RecordModeChange(mode.Transition{
		From: mode.ModePlan,
		To:   mode.ModeBuild,
		At:   time.Now().UTC().Truncate(time.Millisecond),
	})
	return sess
}

func TestRoundTripPreservesEveryField(t *testing.T) {
	store := NewStore(t.TempDir())
	sess := sampleSession()

	require.NoError(t, store.Save(sess))
	loaded, err := store.Load(sess.ID)
	require.NoError(t, err)

	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, sess.Name, loaded.Name)
	require.Len(t, loaded.Turns, len(sess.Turns))
	for i := range sess.Turns {
		assert.Equal(t, sess.Turns[i].Role, loaded.Turns[i].Role)
		assert.Equal(t, sess.Turns[i].Content, loaded.Turns[i].Content)
		assert.Equal(t, sess.Turns[i].Mode, loaded.Turns[i].Mode)
		assert.True(t, sess.Turns[i].Timestamp.Equal(loaded.Turns[i].Timestamp))
	}

	// Tool call arguments and outcomes survive intact.
	require.Len(t, loaded.Turns[1].ToolCalls, 1)
	call := loaded.Turns[1].ToolCalls[0]
	assert.Equal(t, "edit", call.Name)
	assert.Equal(t, "main.go", call.Args["path"])

	require.Len(t, loaded.Turns[1].Outcomes, 1)
	assert.Equal(t, "ok", loaded.Turns[1].Outcomes[0].Status)
	assert.Equal(t, int64(12), loaded.Turns[1].Outcomes[0].DurationMS)

	require.Len(t, loaded.ModeHistory, 1)
	assert.Equal(t, mode.ModePlan, loaded.ModeHistory[0].From)
	assert.Equal(t, mode.ModeBuild, loaded.ModeHistory[0].To)
}

func TestLoadUnknownSession(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSortsByUpdate(t *testing.T) {
	store := NewStore(t.TempDir())

	older := New("older")
	older.Append(Turn{Role: RoleUser, Content: "first", Mode: mode.ModePlan})
	older.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Save(older))

	newer := New("newer")
	newer.Append(Turn{Role: RoleUser, Content: "second", Mode: mode.ModePlan})
	require.NoError(t, store.Save(newer))

	infos, err := store.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, newer.ID, infos[0].ID)
	assert.Equal(t, "newer", infos[0].Summary)
}

func TestListSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	sess := sampleSession()
	require.NoError(t, store.Save(sess))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))

	infos, err := store.List()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestListEmptyDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"))
	infos, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestDelete(t *testing.T) {
	store := NewStore(t.TempDir())
	sess := sampleSession()
	require.NoError(t, store.Save(sess))
	require.NoError(t, store.Delete(sess.ID))

	_, err := store.Load(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(sess.ID), ErrNotFound)
}

func TestSummaryFallsBackToFirstUserMessage(t *testing.T) {
	sess := New("")
	sess.Append(Turn{Role: RoleAssistant, Content: "hi", Mode: mode.ModePlan})
	sess.Append(Turn{Role: RoleUser, Content: "fix the reconnect logic in the websocket client because it drops messages", Mode: mode.ModePlan})

	summary := sess.Summary()
	assert.Contains(t, summary, "fix the reconnect")
	assert.LessOrEqual(t, len(summary), 60)
}
