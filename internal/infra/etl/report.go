package etl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"locator/config"
	"locator/internal/errors"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Inspector reports on the contents of the location table.
type Inspector struct {
	db     *gorm.DB
	cfg    *config.Config
	logger *slog.Logger
}

// InspectorParams defines the dependencies of the inspector
type InspectorParams struct {
	fx.In

	DB     *gorm.DB
	Config *config.Config
	Logger *slog.Logger
}

// NewInspector creates an inspector for the configured table
func NewInspector(params InspectorParams) *Inspector {
	return &Inspector{
		db:     params.DB,
		cfg:    params.Config,
		logger: params.Logger,
	}
}

// ColumnInfo describes one table column
type ColumnInfo struct {
	Name       string
	Type       string
	PrimaryKey bool
	Nullable   bool
	// Distinct is filled only for detailed reports
	Distinct int64
}

// TableInfo summarizes the location table
type TableInfo struct {
	Table           string
	SizeBytes       int64
	Rows            int64
	UniquePostcodes int64
	UniqueLocations int64
	Columns         []ColumnInfo
}

// DuplicateGroup is a postcode carried by more than one row
type DuplicateGroup struct {
	Postcode string
	Count    int64
	Rows     []DuplicateRow
}

// DuplicateRow is one row of a duplicate group
type DuplicateRow struct {
	Town    string
	Street1 string
	County  string
}

// GroupCount is one bucket of a top-N report
type GroupCount struct {
	Value string
	Count int64
}

// Info reports row counts, uniqueness and columns; detail adds per-column distinct counts.
func (i *Inspector) Info(ctx context.Context, detail bool) (*TableInfo, error) {
	db := i.db.WithContext(ctx)
	table := i.cfg.Store.Table

	actual, err := tableColumns(db, table)
	if err != nil {
		return nil, err
	}

	info := &TableInfo{Table: table}
	info.SizeBytes, err = i.size(db)
	if err != nil {
		i.logger.Warn("Failed to read database size", slog.Any("error", err))
	}

	quotedTable := quote(db, table)
	postcode := quote(db, actual[strings.ToLower(ColumnPostcode)])
	lat := quote(db, actual[strings.ToLower(ColumnLatitude)])
	lon := quote(db, actual[strings.ToLower(ColumnLongitude)])

	counts := []struct {
		target *int64
		stmt   string
	}{
		{&info.Rows, "SELECT COUNT(*) FROM " + quotedTable},
		{&info.UniquePostcodes, fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", postcode, quotedTable)},
		{&info.UniqueLocations, fmt.Sprintf("SELECT COUNT(*) FROM (SELECT DISTINCT %s, %s FROM %s) AS locations", lat, lon, quotedTable)},
	}
	for _, count := range counts {
		if err := db.Raw(count.stmt).Row().Scan(count.target); err != nil {
			return nil, errors.Wrapf(err, "failed to inspect %s", table)
		}
	}

	columnTypes, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of %s", table)
	}

	for _, ct := range columnTypes {
		column := ColumnInfo{Name: ct.Name(), Type: ct.DatabaseTypeName()}
		column.PrimaryKey, _ = ct.PrimaryKey()
		column.Nullable, _ = ct.Nullable()

		if detail {
			stmt := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s", quote(db, ct.Name()), quotedTable)
			if err := db.Raw(stmt).Row().Scan(&column.Distinct); err != nil {
				return nil, errors.Wrapf(err, "failed to count distinct %s", ct.Name())
			}
		}

		info.Columns = append(info.Columns, column)
	}

	return info, nil
}

// Duplicates returns the limit most duplicated postcodes with their rows.
func (i *Inspector) Duplicates(ctx context.Context, limit int) ([]DuplicateGroup, error) {
	db := i.db.WithContext(ctx)
	table := i.cfg.Store.Table

	actual, err := tableColumns(db, table)
	if err != nil {
		return nil, err
	}

	quotedTable := quote(db, table)
	postcode := quote(db, actual[strings.ToLower(ColumnPostcode)])

	var groups []struct {
		Postcode string `gorm:"column:postcode"`
		Count    int64  `gorm:"column:count"`
	}
	stmt := fmt.Sprintf(
		"SELECT %s AS postcode, COUNT(*) AS count FROM %s GROUP BY %s HAVING COUNT(*) > 1 ORDER BY count DESC, postcode LIMIT ?",
		postcode, quotedTable, postcode)
	if err := db.Raw(stmt, limit).Scan(&groups).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find duplicate postcodes")
	}

	optional := func(name string) string {
		if column, ok := actual[strings.ToLower(name)]; ok {
			return quote(db, column)
		}

		return "''"
	}
	rowsStmt := fmt.Sprintf("SELECT %s AS town, %s AS street1, %s AS county FROM %s WHERE %s = ? ORDER BY %s",
		optional(ColumnTown), optional(ColumnStreet1), optional(ColumnCounty), quotedTable, postcode, i.rowOrder(db, actual, postcode))

	result := make([]DuplicateGroup, 0, len(groups))
	for _, group := range groups {
		var rows []struct {
			Town    *string `gorm:"column:town"`
			Street1 *string `gorm:"column:street1"`
			County  *string `gorm:"column:county"`
		}
		if err := db.Raw(rowsStmt, group.Postcode).Scan(&rows).Error; err != nil {
			return nil, errors.Wrapf(err, "failed to read rows of %s", group.Postcode)
		}

		dup := DuplicateGroup{Postcode: group.Postcode, Count: group.Count}
		for _, row := range rows {
			dup.Rows = append(dup.Rows, DuplicateRow{
				Town:    deref(row.Town),
				Street1: deref(row.Street1),
				County:  deref(row.County),
			})
		}
		result = append(result, dup)
	}

	return result, nil
}

// Top returns the n most frequent values of column, matched case-insensitively.
func (i *Inspector) Top(ctx context.Context, column string, n int) ([]GroupCount, error) {
	db := i.db.WithContext(ctx)
	table := i.cfg.Store.Table

	actual, err := tableColumns(db, table)
	if err != nil {
		return nil, err
	}

	name, ok := actual[strings.ToLower(strings.TrimSpace(column))]
	if !ok {
		available := make([]string, 0, len(actual))
		for _, spelled := range actual {
			available = append(available, spelled)
		}
		sort.Strings(available)

		return nil, errors.Errorf("column %q not found, available columns: %s", column, strings.Join(available, ", "))
	}

	quoted := quote(db, name)
	stmt := fmt.Sprintf(
		"SELECT COALESCE(CAST(%s AS TEXT), '') AS value, COUNT(*) AS count FROM %s GROUP BY %s ORDER BY count DESC, value LIMIT ?",
		quoted, quote(db, table), quoted)

	var counts []GroupCount
	if err := db.Raw(stmt, n).Scan(&counts).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to group by %s", name)
	}

	return counts, nil
}

func (i *Inspector) size(db *gorm.DB) (int64, error) {
	if db.Dialector.Name() == "postgres" {
		var size int64
		err := db.Raw("SELECT pg_total_relation_size(?::regclass)", i.cfg.Store.Table).Row().Scan(&size)

		return size, errors.WithStack(err)
	}

	stat, err := os.Stat(i.cfg.Store.SQLite.Path)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return stat.Size(), nil
}

func (i *Inspector) rowOrder(db *gorm.DB, actual map[string]string, fallback string) string {
	if id, ok := actual["id"]; ok {
		return quote(db, id)
	}
	if db.Dialector.Name() != "postgres" {
		return "rowid"
	}

	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
