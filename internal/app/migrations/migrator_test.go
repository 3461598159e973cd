package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", VersionOf("001_init.sql"))
	assert.Equal(t, "002", VersionOf("sql/002_add_index.sql"))
}

func TestPending_SortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.sql": {Data: []byte("SELECT 2;")},
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"README.md": {Data: []byte("docs")},
		"010_c.sql": {Data: []byte("SELECT 10;")},
		"dir/x.sql": {Data: []byte("SELECT 0;")},
	}

	files, err := Pending(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "010_c.sql"}, files)
}

func TestFiles_EmbedsInitialSchema(t *testing.T) {
	files, err := Pending(Files())
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_university_hashtags.sql"}, files)
}
