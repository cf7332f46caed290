package userlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := "alice\n  bob  \r\n\n# comment\n@carol\nAlice\n\t\n"

	names, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}

func TestParseEmpty(t *testing.T) {
	names, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\nbob\n"), 0644))

	names, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
