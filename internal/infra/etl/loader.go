package etl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"locator/config"
	"locator/internal/errors"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// maxStatementVariables stays under SQLite's bound parameter limit.
const maxStatementVariables = 30000

// indexedColumns maps each lookup index to the column it covers.
var indexedColumns = []struct {
	name   string
	column string
}{
	{name: "idx_postcode", column: ColumnPostcode},
	{name: "idx_town", column: ColumnTown},
	{name: "idx_county", column: ColumnCounty},
}

// Loader writes CSV records into the location table.
type Loader struct {
	db        *gorm.DB
	table     string
	batchSize int
	logger    *slog.Logger
}

// LoaderParams defines the dependencies of the loader
type LoaderParams struct {
	fx.In

	DB     *gorm.DB
	Config *config.Config
	Logger *slog.Logger
}

// NewLoader creates a loader for the configured table
func NewLoader(params LoaderParams) *Loader {
	batchSize := params.Config.Loader.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultLoaderBatchSize
	}

	return &Loader{
		db:        params.DB,
		table:     params.Config.Store.Table,
		batchSize: batchSize,
		logger:    params.Logger,
	}
}

// LoadOptions controls a load run
type LoadOptions struct {
	// Create drops the table before loading; otherwise rows are appended.
	Create bool
}

// LoadReport summarizes a load run
type LoadReport struct {
	Columns            []string
	Read               int64
	Loaded             int64
	InvalidCoordinates int64
	TableRows          int64
	Indexes            []string
	Spatial            bool
	Elapsed            time.Duration
}

// Load streams r into the table inside one transaction, then builds the indexes.
func (l *Loader) Load(ctx context.Context, r io.Reader, opts LoadOptions) (*LoadReport, error) {
	start := time.Now()

	reader, err := NewCSVReader(r)
	if err != nil {
		return nil, err
	}

	report := &LoadReport{Columns: reader.Columns()}
	for _, column := range report.Columns {
		if strings.EqualFold(column, "id") {
			return nil, errors.New("CSV column id clashes with the surrogate key")
		}
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Create {
			if err := tx.Migrator().DropTable(l.table); err != nil {
				return errors.Wrapf(err, "failed to drop %s", l.table)
			}
			l.logger.Info("Dropped existing table", slog.String("table", l.table))
		}

		if !tx.Migrator().HasTable(l.table) {
			if err := tx.Exec(l.createTableSQL(tx, reader)).Error; err != nil {
				return errors.Wrapf(err, "failed to create %s", l.table)
			}
		}

		return l.copyRows(ctx, tx, reader, report)
	})
	if err != nil {
		return nil, err
	}
	report.InvalidCoordinates = reader.InvalidCoordinates

	if report.Indexes, err = l.CreateIndexes(ctx); err != nil {
		return nil, err
	}

	if report.Spatial, err = l.ensureGeography(ctx); err != nil {
		return nil, err
	}

	if err := l.db.WithContext(ctx).Table(l.table).Count(&report.TableRows).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to count %s", l.table)
	}

	report.Elapsed = time.Since(start)

	return report, nil
}

func (l *Loader) copyRows(ctx context.Context, tx *gorm.DB, reader *CSVReader, report *LoadReport) error {
	columns := reader.Columns()
	rowsPerInsert := min(l.batchSize, max(1, maxStatementVariables/len(columns)))

	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = quote(tx, column)
	}
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", quote(tx, l.table), strings.Join(quoted, ", "))
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	batch := make([]any, 0, rowsPerInsert*len(columns))
	rows, flushes := 0, 0
	flush := func() error {
		if rows == 0 {
			return nil
		}
		stmt := prefix + strings.TrimSuffix(strings.Repeat(placeholders+", ", rows), ", ")
		if err := tx.Exec(stmt, batch...).Error; err != nil {
			return errors.Wrapf(err, "failed to insert rows ending at CSV line %d", reader.Line())
		}
		report.Loaded += int64(rows)
		batch = batch[:0]
		rows = 0
		flushes++

		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}

		values, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		report.Read++
		batch = append(batch, values...)
		rows++

		if rows == rowsPerInsert {
			if err := flush(); err != nil {
				return err
			}
			if flushes%20 == 0 {
				l.logger.Info("Loading rows", slog.Int64("loaded", report.Loaded))
			}
		}
	}

	return flush()
}

func (l *Loader) createTableSQL(tx *gorm.DB, reader *CSVReader) string {
	idType, realType := "INTEGER PRIMARY KEY", "REAL"
	if tx.Dialector.Name() == "postgres" {
		idType, realType = "BIGSERIAL PRIMARY KEY", "DOUBLE PRECISION"
	}

	defs := []string{"id " + idType}
	for i, column := range reader.Columns() {
		columnType := "TEXT"
		if reader.IsCoordinate(i) {
			columnType = realType
		}
		defs = append(defs, quote(tx, column)+" "+columnType)
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(tx, l.table), strings.Join(defs, ", "))
}

// CreateIndexes builds the postcode, town and county indexes that exist in the table.
func (l *Loader) CreateIndexes(ctx context.Context) ([]string, error) {
	db := l.db.WithContext(ctx)

	actual, err := tableColumns(db, l.table)
	if err != nil {
		return nil, err
	}

	var created []string
	for _, index := range indexedColumns {
		column, ok := actual[strings.ToLower(index.column)]
		if !ok {
			continue
		}

		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quote(db, index.name), quote(db, l.table), quote(db, column))
		if err := db.Exec(stmt).Error; err != nil {
			return nil, errors.Wrapf(err, "failed to create index %s", index.name)
		}
		created = append(created, index.name)
	}

	l.logger.Info("Indexes ready", slog.String("table", l.table), slog.Any("indexes", created))

	return created, nil
}

// ensureGeography maintains a PostGIS geography column for geofence push-down.
// It is a no-op on stores without PostGIS.
func (l *Loader) ensureGeography(ctx context.Context) (bool, error) {
	db := l.db.WithContext(ctx)
	if db.Dialector.Name() != "postgres" {
		return false, nil
	}

	var version string
	if err := db.Raw("SELECT PostGIS_Version()").Row().Scan(&version); err != nil {
		l.logger.Info("PostGIS not available, skipping geography column", slog.Any("error", err))

		return false, nil
	}

	actual, err := tableColumns(db, l.table)
	if err != nil {
		return false, err
	}

	table := quote(db, l.table)
	lat := quote(db, actual[strings.ToLower(ColumnLatitude)])
	lon := quote(db, actual[strings.ToLower(ColumnLongitude)])

	statements := []string{
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS geom geography(Point, 4326)", table),
		fmt.Sprintf("UPDATE %s SET geom = ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography WHERE geom IS NULL AND %s IS NOT NULL AND %s IS NOT NULL",
			table, lon, lat, lat, lon),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_geom ON %s USING GIST (geom)", table),
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return false, errors.Wrap(err, "failed to maintain geography column")
		}
	}

	l.logger.Info("Geography column ready", slog.String("postgis", version))

	return true, nil
}

// tableColumns maps lowercase column names to their actual spelling.
func tableColumns(db *gorm.DB, table string) (map[string]string, error) {
	if !db.Migrator().HasTable(table) {
		return nil, errors.Errorf("table %s does not exist", table)
	}

	columnTypes, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of %s", table)
	}

	columns := make(map[string]string, len(columnTypes))
	for _, ct := range columnTypes {
		columns[strings.ToLower(ct.Name())] = ct.Name()
	}

	return columns, nil
}

func quote(db *gorm.DB, name string) string {
	var b strings.Builder
	db.Dialector.QuoteTo(&b, name)

	return b.String()
}
