package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"docrepo/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, s Storage, key string) string {
	t.Helper()
	rc, _, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func keys(infos []ObjectInfo) []string {
	out := make([]string, 0, len(infos))
	for _, i := range infos {
		out = append(out, i.Key)
	}
	sort.Strings(out)
	return out
}

// exerciseStorage runs the behavior every backend must share.
func exerciseStorage(t *testing.T, s Storage) {
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		info, err := s.Put(ctx, "1_report.txt", strings.NewReader("hello"), PutObjectOptions{Size: 5, ContentType: "text/plain"})
		require.NoError(t, err)
		assert.Equal(t, "1_report.txt", info.Key)
		assert.Equal(t, int64(5), info.Size)
		assert.Equal(t, "hello", readAll(t, s, "1_report.txt"))
	})

	t.Run("put replaces", func(t *testing.T) {
		_, err := s.Put(ctx, "1_report.txt", strings.NewReader("bye"), PutObjectOptions{Size: 3})
		require.NoError(t, err)
		assert.Equal(t, "bye", readAll(t, s, "1_report.txt"))
	})

	t.Run("get missing", func(t *testing.T) {
		_, _, err := s.Get(ctx, "missing.txt")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("list by prefix", func(t *testing.T) {
		_, err := s.Put(ctx, "11_other.txt", strings.NewReader("x"), PutObjectOptions{Size: 1})
		require.NoError(t, err)
		_, err = s.Put(ctx, "2_notes.txt", strings.NewReader("y"), PutObjectOptions{Size: 1})
		require.NoError(t, err)

		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"11_other.txt", "1_report.txt", "2_notes.txt"}, keys(all))

		ones, err := s.List(ctx, "1_")
		require.NoError(t, err)
		assert.Equal(t, []string{"1_report.txt"}, keys(ones))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "2_notes.txt"))
		require.NoError(t, s.Delete(ctx, "2_notes.txt"))
		_, _, err := s.Get(ctx, "2_notes.txt")
		assert.ErrorIs(t, err, ErrObjectNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestLocalStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(dir)
	require.NoError(t, err)

	exerciseStorage(t, s)

	t.Run("files are world readable", func(t *testing.T) {
		st, err := os.Stat(filepath.Join(dir, "1_report.txt"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(filePerms), st.Mode().Perm())
	})

	t.Run("rejects keys escaping the directory", func(t *testing.T) {
		for _, key := range []string{"", "..", "a/b", `a\b`} {
			_, err := s.Put(context.Background(), key, strings.NewReader("x"), PutObjectOptions{})
			assert.ErrorIs(t, err, ErrInvalidKey, key)
		}
	})

	t.Run("list skips subdirectories", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(dir, "1_sub"), 0o755))
		ones, err := s.List(context.Background(), "1_")
		require.NoError(t, err)
		assert.Equal(t, []string{"1_report.txt"}, keys(ones))
	})

	t.Run("ping fails when directory is gone", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(dir))
		assert.Error(t, s.Ping(context.Background()))
	})
}

func TestNewLocal_RequiresDir(t *testing.T) {
	_, err := NewLocal("")
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemory())
}

func TestMemoryStorage_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemory()
	_, err := s.Put(ctx, "k", strings.NewReader("v"), PutObjectOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectionPrefix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"metadata", "metadata/"},
		{"/documents/", "documents/"},
		{"a/b", "a/b/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, collectionPrefix(tt.in), tt.in)
	}
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}},
		{name: "missing credentials", cfg: config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(tt.cfg, "metadata")
			assert.Error(t, err)
		})
	}
}
