package results

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")

	s, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(s.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_WriteReadExists(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	assert.False(t, s.Exists("report.json"))
	require.NoError(t, s.Write("report.json", []byte(`{}`)))
	assert.True(t, s.Exists("report.json"))

	data, err := s.Read("report.json")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestStore_ExistsIgnoresDirectories(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(s.Path("sub"), 0755))

	assert.False(t, s.Exists("sub"))
}

func TestStore_WriteWithRemovesFileOnError(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	err = s.WriteWith("report.pdf", func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("render failed")
	})
	require.Error(t, err)
	assert.False(t, s.Exists("report.pdf"))

	require.NoError(t, s.WriteWith("report.csv", func(w io.Writer) error {
		_, err := w.Write([]byte("a,b\n"))
		return err
	}))
	assert.True(t, s.Exists("report.csv"))
}
