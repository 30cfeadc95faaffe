package etl

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"locator/config"
	"locator/internal/infra/persistence/sqlstore"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const sampleCSV = `Postcode,Stem,Town,County,Street1,Street2,District1,District2,EXTRA_Decimal degrees latitude,EXTRA_Decimal degrees longitude
sw1a 1aa,SW1A,LONDON,GREATER LONDON,THE MALL,,WESTMINSTER,,51.501009,-0.141588
SW1A 2AA,SW1A,LONDON,,DOWNING STREET,,WESTMINSTER,,51.503541,-0.12767
M1 1AE,M1,MANCHESTER,GREATER MANCHESTER,PICCADILLY,,,,53.480759,-2.23736
SW1A 1AA,SW1A,LONDON,GREATER LONDON,BUCKINGHAM GATE,,WESTMINSTER,,51.5011,-0.1416
EH1 1YZ,EH1,EDINBURGH,,PRINCES STREET,,,OLD TOWN,55.95206,n/a
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) (*gorm.DB, *config.Config) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "locations.db")
	cfg.Loader.BatchSize = 2
	cfg.ApplyDefaults()

	db, err := sqlstore.Open(cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db, cfg
}

func newTestLoader(db *gorm.DB, cfg *config.Config) *Loader {
	return NewLoader(LoaderParams{DB: db, Config: cfg, Logger: testLogger()})
}

func newTestInspector(db *gorm.DB, cfg *config.Config) *Inspector {
	return NewInspector(InspectorParams{DB: db, Config: cfg, Logger: testLogger()})
}
