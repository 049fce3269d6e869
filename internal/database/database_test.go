package database

import (
	"path/filepath"
	"testing"

	"github.com/smart-agence/crm-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	cases := []struct {
		in      string
		dialect Dialect
		dsn     string
	}{
		{"postgres://u:p@db:5432/agence?sslmode=disable", DialectPostgres, "postgres://u:p@db:5432/agence?sslmode=disable"},
		{"postgresql://u@db/agence", DialectPostgres, "postgresql://u@db/agence"},
		{"sqlite:///./smart_agence.db", DialectSQLite, "./smart_agence.db?" + sqlitePragmas},
		{"sqlite://agence.db", DialectSQLite, "agence.db?" + sqlitePragmas},
		{"/var/lib/agence.db", DialectSQLite, "/var/lib/agence.db?" + sqlitePragmas},
		{"file:agence.db?cache=shared", DialectSQLite, "file:agence.db?cache=shared&" + sqlitePragmas},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			d, dsn, err := ParseURL(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.dialect, d)
			assert.Equal(t, tc.dsn, dsn)
		})
	}

	_, _, err := ParseURL("")
	assert.Error(t, err)
	_, _, err = ParseURL("mysql://root@localhost/agence")
	assert.Error(t, err)
}

func TestConnectMigratesSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agence.db")

	db, err := Connect(path, nil)
	require.NoError(t, err)
	for _, m := range []interface{}{&model.Agent{}, &model.Ticket{}, &model.Evenement{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	require.NoError(t, Close(db))

	// second run finds nothing to apply
	db, err = Connect(path, nil)
	require.NoError(t, err)
	require.NoError(t, Close(db))
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := Connect(filepath.Join(t.TempDir(), "fk.db"), nil)
	require.NoError(t, err)
	defer Close(db)

	err = db.Create(&model.Ticket{AgentID: 999, CategorieService: "Support"}).Error
	assert.Error(t, err)
}
