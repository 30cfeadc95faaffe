package sqlstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"locator/config"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const createLocationTable = `CREATE TABLE location_data (
	id INTEGER PRIMARY KEY,
	Postcode TEXT,
	Latitude REAL,
	Longitude REAL,
	Town TEXT,
	County TEXT,
	Street1 TEXT,
	Street2 TEXT,
	District1 TEXT,
	District2 TEXT
)`

type seedRow struct {
	ID        int64
	Postcode  string
	Latitude  any
	Longitude any
	Town      string
	County    string
	District1 string
	District2 string
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "locations.db")
	cfg.ApplyDefaults()

	return cfg
}

func openTestDB(t *testing.T) (*gorm.DB, *config.Config) {
	t.Helper()

	cfg := testConfig(t)
	db, err := Open(cfg, testLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db, cfg
}

func seed(t *testing.T, db *gorm.DB, rows ...seedRow) {
	t.Helper()

	for _, row := range rows {
		require.NoError(t, db.Exec(
			`INSERT INTO location_data (id, Postcode, Latitude, Longitude, Town, County, Street1, Street2, District1, District2)
			 VALUES (?, ?, ?, ?, ?, ?, '', '', ?, ?)`,
			row.ID, row.Postcode, row.Latitude, row.Longitude, row.Town, row.County, row.District1, row.District2,
		).Error)
	}
}

// fixtureRows is a small slice of the UK dataset.
func fixtureRows() []seedRow {
	return []seedRow{
		{ID: 1, Postcode: "SW1A 1AA", Latitude: 51.501009, Longitude: -0.141588, Town: "LONDON", County: "GREATER LONDON", District1: "WESTMINSTER"},
		{ID: 2, Postcode: "SW1A 2AA", Latitude: 51.503541, Longitude: -0.12767, Town: "LONDON", County: "GREATER LONDON", District1: "WESTMINSTER"},
		{ID: 3, Postcode: "EC1A 1BB", Latitude: 51.520180, Longitude: -0.097960, Town: "LONDON", County: "GREATER LONDON", District1: "CITY OF LONDON"},
		{ID: 4, Postcode: "M1 1AE", Latitude: 53.480759, Longitude: -2.237360, Town: "MANCHESTER", County: "GREATER MANCHESTER"},
		{ID: 5, Postcode: "EH1 1YZ", Latitude: 55.952060, Longitude: -3.190280, Town: "EDINBURGH", County: "", District2: "OLD TOWN"},
		{ID: 6, Postcode: "SW1A 1AA", Latitude: 51.5011, Longitude: -0.1416, Town: "LONDON", County: "GREATER LONDON"},
		{ID: 7, Postcode: "BS1 4DJ", Latitude: 51.4545, Longitude: -2.5879, Town: "BRISTOL", County: "CITY OF BRISTOL", District1: "LONDON ROAD"},
	}
}

func newTestRepository(t *testing.T, rows ...seedRow) (*locationRepository, *gorm.DB) {
	t.Helper()

	db, cfg := openTestDB(t)
	require.NoError(t, db.Exec(createLocationTable).Error)
	seed(t, db, rows...)

	schema, err := DiscoverSchema(context.Background(), db, cfg.Store.Table)
	require.NoError(t, err)

	return newLocationRepository(db, NewStaticSchemaProvider(schema), time.Second, testLogger()), db
}
