package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSnapshotter records snapshot and restore calls.
type fakeSnapshotter struct {
	snapshots   int
	restored    []string
	snapshotErr error
	restoreErr  error
	clean       bool
}

func (f *fakeSnapshotter) Snapshot(_ context.Context, reason string) (string, error) {
	if f.snapshotErr != nil {
		return "", f.snapshotErr
	}
	if f.clean {
		return "", nil
	}
	f.snapshots++
	return fmt.Sprintf("ref-%d", f.snapshots), nil
}

func (f *fakeSnapshotter) Restore(_ context.Context, ref string) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	f.restored = append(f.restored, ref)
	return nil
}

func TestEnsureCheckpointIdempotentPerTurn(t *testing.T) {
	fake := &fakeSnapshotter{}
	m := NewManager(fake, true)
	m.BeginTurn(0)

	ref1, err := m.EnsureCheckpoint(context.Background(), "before write")
	require.NoError(t, err)
	require.NotNil(t, ref1)

	ref2, err := m.EnsureCheckpoint(context.Background(), "before edit")
	require.NoError(t, err)
	assert.Equal(t, ref1.ID, ref2.ID)
	assert.Equal(t, 1, fake.snapshots)
}

func TestBeginTurnResetsFlag(t *testing.T) {
	fake := &fakeSnapshotter{}
	m := NewManager(fake, true)

	m.BeginTurn(0)
	_, err := m.EnsureCheckpoint(context.Background(), "turn 0")
	require.NoError(t, err)

	m.BeginTurn(1)
	ref, err := m.EnsureCheckpoint(context.Background(), "turn 1")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.snapshots)
	assert.Equal(t, 1, ref.TurnIndex)
}

func TestEnsureCheckpointDisabled(t *testing.T) {
	fake := &fakeSnapshotter{}
	m := NewManager(fake, false)
	m.BeginTurn(0)

	ref, err := m.EnsureCheckpoint(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, ref)
	assert.Equal(t, 0, fake.snapshots)
}

func TestEnsureCheckpointFailurePropagates(t *testing.T) {
	fake := &fakeSnapshotter{snapshotErr: errors.New("disk full")}
	m := NewManager(fake, true)
	m.BeginTurn(0)

	_, err := m.EnsureCheckpoint(context.Background(), "x")
	require.Error(t, err)

	// A later attempt retries instead of treating the turn as done.
	fake.snapshotErr = nil
	ref, err := m.EnsureCheckpoint(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, ref)
}

func TestEnsureCheckpointCleanTree(t *testing.T) {
	fake := &fakeSnapshotter{clean: true}
	m := NewManager(fake, true)
	m.BeginTurn(0)

	ref, err := m.EnsureCheckpoint(context.Background(), "x")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Empty(t, ref.ID)
	assert.Empty(t, m.History())
}

func TestUndoRedo(t *testing.T) {
	fake := &fakeSnapshotter{}
	m := NewManager(fake, true)

	m.BeginTurn(0)
	_, err := m.EnsureCheckpoint(context.Background(), "a")
	require.NoError(t, err)
	m.BeginTurn(1)
	_, err = m.EnsureCheckpoint(context.Background(), "b")
	require.NoError(t, err)

	ref, err := m.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ref-2", ref.ID)
	assert.Equal(t, []string{"ref-2"}, fake.restored)

	ref, err = m.Redo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ref-2", ref.ID)
}

func TestUndoEmptyHistory(t *testing.T) {
	m := NewManager(&fakeSnapshotter{}, true)
	_, err := m.Undo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestRedoEmptyStack(t *testing.T) {
	m := NewManager(&fakeSnapshotter{}, true)
	_, err := m.Redo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestNewCheckpointClearsRedo(t *testing.T) {
	fake := &fakeSnapshotter{}
	m := NewManager(fake, true)

	m.BeginTurn(0)
	_, err := m.EnsureCheckpoint(context.Background(), "a")
	require.NoError(t, err)

	_, err = m.Undo(context.Background())
	require.NoError(t, err)

	m.BeginTurn(1)
	_, err = m.EnsureCheckpoint(context.Background(), "b")
	require.NoError(t, err)

	_, err = m.Redo(context.Background())
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestUndoRestoreFailureKeepsHistory(t *testing.T) {
	fake := &fakeSnapshotter{}
	m := NewManager(fake, true)

	m.BeginTurn(0)
	_, err := m.EnsureCheckpoint(context.Background(), "a")
	require.NoError(t, err)

	fake.restoreErr = errors.New("conflict")
	_, err = m.Undo(context.Background())
	require.Error(t, err)

	fake.restoreErr = nil
	ref, err := m.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ref-1", ref.ID)
}

func TestRestoreToRecordsPreRestoreState(t *testing.T) {
	fake := &fakeSnapshotter{}
	m := NewManager(fake, true)

	pre, err := m.RestoreTo(context.Background(), "abc1234", "before restore")
	require.NoError(t, err)
	require.NotNil(t, pre)
	assert.Equal(t, "ref-1", pre.ID)
	assert.Equal(t, []string{"abc1234"}, fake.restored)

	// The pre-restore snapshot lands on the undo history, so the
	// restore itself can be undone.
	require.Len(t, m.History(), 1)
	undone, err := m.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ref-1", undone.ID)
}

func TestRestoreToCleanTree(t *testing.T) {
	fake := &fakeSnapshotter{clean: true}
	m := NewManager(fake, true)

	pre, err := m.RestoreTo(context.Background(), "abc1234", "before restore")
	require.NoError(t, err)
	assert.Nil(t, pre)
	assert.Equal(t, []string{"abc1234"}, fake.restored)
	assert.Empty(t, m.History())
}

func TestRestoreToSnapshotFailureAborts(t *testing.T) {
	fake := &fakeSnapshotter{snapshotErr: errors.New("index locked")}
	m := NewManager(fake, true)

	_, err := m.RestoreTo(context.Background(), "abc1234", "before restore")
	require.Error(t, err)
	assert.Empty(t, fake.restored)
}
