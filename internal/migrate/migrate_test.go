package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	sub, err := fs.Sub(files, "sql")
	require.NoError(t, err)

	ups, err := list(sub, ".up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	downs, err := list(sub, ".down.sql")
	require.NoError(t, err)
	assert.Len(t, downs, len(ups))

	for _, up := range ups {
		version := strings.TrimSuffix(up, ".up.sql")
		_, err := fs.Stat(sub, version+".down.sql")
		assert.NoError(t, err, "missing down for %s", version)
	}
}

func TestInitialSchemaSeedsRoles(t *testing.T) {
	body, err := fs.ReadFile(files, "sql/0001_init.up.sql")
	require.NoError(t, err)
	for _, role := range []string{"system_admin", "real_estate_admin", "seller", "client"} {
		assert.Contains(t, string(body), "'"+role+"'")
	}
}
