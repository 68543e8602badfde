package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 20 * time.Millisecond

func waitChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case change, ok := <-changes:
		require.True(t, ok, "channel closed before a change arrived")
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for file change")
	}
	return Change{}
}

func TestNew(t *testing.T) {
	w := New("/tmp/inbox")

	require.NotNil(t, w)
	assert.Equal(t, "/tmp/inbox", w.Root())
	assert.Equal(t, DefaultDebounce, w.debounce)

	assert.Equal(t, testDebounce, New("x", WithDebounce(testDebounce)).debounce)
	assert.Equal(t, DefaultDebounce, New("x", WithDebounce(0)).debounce)
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		dir := t.TempDir()
		w := New(dir, WithDebounce(testDebounce))
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, "deck.txt")
		require.NoError(t, os.WriteFile(path, []byte("slide one"), 0o600))

		change := waitChange(t, changes)
		assert.Equal(t, path, change.Path)
		assert.Equal(t, ChangeCreated, change.Type)
	})

	t.Run("reports modified files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.md")
		require.NoError(t, os.WriteFile(path, []byte("initial"), 0o600))

		w := New(dir, WithDebounce(testDebounce))
		defer w.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("modified"), 0o600))

		change := waitChange(t, changes)
		assert.Equal(t, path, change.Path)
		assert.Equal(t, ChangeUpdated, change.Type)
	})

	t.Run("coalesces repeated writes", func(t *testing.T) {
		dir := t.TempDir()
		w := New(dir, WithDebounce(200*time.Millisecond))
		defer w.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(dir, "big.txt")
		f, err := os.Create(path)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			_, err := f.WriteString("chunk ")
			require.NoError(t, err)
		}
		require.NoError(t, f.Close())

		change := waitChange(t, changes)
		assert.Equal(t, ChangeCreated, change.Type)

		select {
		case extra := <-changes:
			t.Fatalf("unexpected second change: %+v", extra)
		case <-time.After(400 * time.Millisecond):
		}
	})

	t.Run("ignores unsupported and hidden files", func(t *testing.T) {
		dir := t.TempDir()
		w := New(dir, WithDebounce(testDebounce))
		defer w.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		changes, err := w.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "archive.zip"), []byte("x"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".draft.txt"), []byte("x"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("x"), 0o600))

		change := waitChange(t, changes)
		assert.Equal(t, "real.txt", filepath.Base(change.Path))
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		changes, err := New("/non/existent/path").Watch(context.Background())

		assert.ErrorContains(t, err, "root path error")
		assert.Nil(t, changes)
	})

	t.Run("returns error for a file root", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		_, err := New(path).Watch(context.Background())
		assert.ErrorContains(t, err, "not a directory")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		w := New(t.TempDir())
		defer w.Close()
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := w.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when closed", func(t *testing.T) {
		w := New(t.TempDir())
		require.NoError(t, w.Close())

		changes, err := w.Watch(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
		assert.Nil(t, changes)
	})
}

func TestWatcher_Close(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		w := New("/tmp/test")

		assert.NoError(t, w.Close())
		assert.NoError(t, w.Close())
	})

	t.Run("ends an active watch", func(t *testing.T) {
		w := New(t.TempDir())
		changes, err := w.Watch(context.Background())
		require.NoError(t, err)

		require.NoError(t, w.Close())

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after Close")
		}
	})
}

func TestHandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	sub := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(sub, 0o700))

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want *Change
	}{
		{"create", file, fsnotify.Create, &Change{Path: file, Type: ChangeCreated}},
		{"write", file, fsnotify.Write, &Change{Path: file, Type: ChangeUpdated}},
		{"write and chmod", file, fsnotify.Write | fsnotify.Chmod, &Change{Path: file, Type: ChangeUpdated}},
		{"create wins over write", file, fsnotify.Create | fsnotify.Write, &Change{Path: file, Type: ChangeCreated}},
		{"chmod only", file, fsnotify.Chmod, nil},
		{"remove", filepath.Join(dir, "gone.pdf"), fsnotify.Remove, nil},
		{"rename", file, fsnotify.Rename, nil},
		{"directory", sub, fsnotify.Create, nil},
		{"missing file", filepath.Join(dir, "vanished.pdf"), fsnotify.Create, nil},
		{"unsupported", filepath.Join(dir, "a.exe"), fsnotify.Create, nil},
		{"hidden", filepath.Join(dir, ".deck.pptx"), fsnotify.Create, nil},
	}
	w := New(dir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"/path/.hidden/file.txt", true},
		{".config/.cache/data", true},
		{"file.txt", false},
		{"/root/visible/file.txt", false},
		{".", false},
		{"..", false},
		{"path/./file", false},
		{"path/../file", false},
		{"", false},
		{"/", false},
		{"file.hidden", false},
		{"directory.name/file", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.path))
		})
	}
}
