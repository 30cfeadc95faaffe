package sqlstore

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"locator/config"
	"locator/internal/domain/entity"
	"locator/internal/errors"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Logical column names understood by the store.
const (
	ColumnPostcode  = "postcode"
	ColumnLatitude  = "latitude"
	ColumnLongitude = "longitude"
	ColumnTown      = "town"
	ColumnCounty    = "county"
	ColumnStreet1   = "street1"
	ColumnStreet2   = "street2"
	ColumnDistrict1 = "district1"
	ColumnDistrict2 = "district2"

	columnID   = "id"
	columnGeom = "geom"
)

var (
	requiredColumns = []string{ColumnPostcode, ColumnLatitude, ColumnLongitude}
	optionalColumns = []string{ColumnTown, ColumnCounty, ColumnStreet1, ColumnStreet2, ColumnDistrict1, ColumnDistrict2}

	// searchColumns maps each searchable field to the columns it matches.
	searchColumns = map[entity.SearchField][]string{
		entity.SearchFieldPostcode: {ColumnPostcode},
		entity.SearchFieldTown:     {ColumnTown, ColumnDistrict1, ColumnDistrict2},
		entity.SearchFieldCounty:   {ColumnCounty},
	}
)

// Schema is the column layout of the location table, discovered once.
type Schema struct {
	Table string

	// Columns maps logical names to actual column names; absent optional columns are missing.
	Columns map[string]string

	// RowID is the stable ordering column: "id", SQLite's implicit rowid, or empty.
	RowID string

	// Geom is the PostGIS geography column maintained by the loader, if any.
	Geom string
}

// Has reports whether a logical column exists.
func (s *Schema) Has(logical string) bool {
	_, ok := s.Columns[logical]

	return ok
}

// SearchableFields lists the fields with at least one backing column.
func (s *Schema) SearchableFields() []entity.SearchField {
	fields := make([]entity.SearchField, 0, len(searchColumns))
	for _, field := range entity.SearchFields() {
		for _, logical := range searchColumns[field] {
			if s.Has(logical) {
				fields = append(fields, field)

				break
			}
		}
	}

	return fields
}

// DiscoverSchema reads the table columns and matches them case-insensitively.
func DiscoverSchema(ctx context.Context, db *gorm.DB, table string) (*Schema, error) {
	migrator := db.WithContext(ctx).Migrator()
	if !migrator.HasTable(table) {
		return nil, errors.Errorf("table %s does not exist", table)
	}

	columnTypes, err := migrator.ColumnTypes(table)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read columns of %s", table)
	}

	actual := make(map[string]string, len(columnTypes))
	for _, ct := range columnTypes {
		actual[strings.ToLower(ct.Name())] = ct.Name()
	}

	schema := &Schema{
		Table:   table,
		Columns: make(map[string]string, len(requiredColumns)+len(optionalColumns)),
	}

	for _, logical := range requiredColumns {
		name, ok := actual[logical]
		if !ok {
			return nil, errors.Errorf("table %s has no %s column", table, logical)
		}
		schema.Columns[logical] = name
	}

	for _, logical := range optionalColumns {
		if name, ok := actual[logical]; ok {
			schema.Columns[logical] = name
		}
	}

	switch {
	case actual[columnID] != "":
		schema.RowID = actual[columnID]
	case dialect(db) == dialectSQLite:
		schema.RowID = "rowid"
	}

	if dialect(db) == dialectPostgres {
		schema.Geom = actual[columnGeom]
	}

	return schema, nil
}

// SchemaProvider discovers the schema lazily and keeps the first success.
// A store that is down at startup is retried on the next request.
type SchemaProvider struct {
	db     *gorm.DB
	table  string
	logger *slog.Logger

	mu     sync.Mutex
	schema *Schema
}

// SchemaParams defines the dependencies of the schema provider
type SchemaParams struct {
	fx.In

	DB     *gorm.DB
	Config *config.Config
	Logger *slog.Logger
}

// NewSchemaProvider creates a provider and attempts discovery once
func NewSchemaProvider(params SchemaParams) *SchemaProvider {
	provider := &SchemaProvider{
		db:     params.DB,
		table:  params.Config.Store.Table,
		logger: params.Logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), params.Config.Store.AcquireTimeout)
	defer cancel()

	if _, err := provider.Schema(ctx); err != nil {
		params.Logger.Warn("Location schema discovery failed, retrying on first request",
			slog.String("table", provider.table),
			slog.Any("error", err),
		)
	}

	return provider
}

// NewStaticSchemaProvider wraps an already discovered schema.
func NewStaticSchemaProvider(schema *Schema) *SchemaProvider {
	return &SchemaProvider{table: schema.Table, schema: schema}
}

// Schema returns the discovered schema.
func (p *SchemaProvider) Schema(ctx context.Context) (*Schema, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schema != nil {
		return p.schema, nil
	}

	schema, err := DiscoverSchema(ctx, p.db, p.table)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Location schema discovered",
		slog.String("table", schema.Table),
		slog.Any("columns", schema.Columns),
		slog.String("rowId", schema.RowID),
		slog.String("geom", schema.Geom),
	)
	p.schema = schema

	return schema, nil
}
