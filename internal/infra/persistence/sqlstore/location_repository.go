package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"locator/config"
	"locator/internal/domain/entity"
	domainerrors "locator/internal/domain/errors"
	"locator/internal/domain/repository"
	"locator/internal/errors"

	"github.com/paulmach/orb"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// locationRow is the scan target of every location query.
type locationRow struct {
	RowID     sql.NullInt64   `gorm:"column:row_id"`
	Postcode  sql.NullString  `gorm:"column:postcode"`
	Latitude  sql.NullFloat64 `gorm:"column:latitude"`
	Longitude sql.NullFloat64 `gorm:"column:longitude"`
	Town      sql.NullString  `gorm:"column:town"`
	County    sql.NullString  `gorm:"column:county"`
	Street1   sql.NullString  `gorm:"column:street1"`
	Street2   sql.NullString  `gorm:"column:street2"`
	District1 sql.NullString  `gorm:"column:district1"`
	District2 sql.NullString  `gorm:"column:district2"`
	Distance  sql.NullFloat64 `gorm:"column:distance"`
}

// locationRepository implements repository.LocationRepository with raw SQL,
// since column names are only known after discovery.
type locationRepository struct {
	db       *gorm.DB
	schemas  *SchemaProvider
	timeout  time.Duration
	logger   *slog.Logger
	geodesic atomic.Bool
}

// RepositoryParams defines the dependencies of the location repository
type RepositoryParams struct {
	fx.In

	DB      *gorm.DB
	Schemas *SchemaProvider
	Config  *config.Config
	Logger  *slog.Logger
}

// NewLocationRepository is the fx constructor for the location repository.
func NewLocationRepository(params RepositoryParams) repository.LocationRepository {
	return newLocationRepository(params.DB, params.Schemas, params.Config.Store.AcquireTimeout, params.Logger)
}

func newLocationRepository(db *gorm.DB, schemas *SchemaProvider, timeout time.Duration, logger *slog.Logger) *locationRepository {
	if timeout <= 0 {
		timeout = config.DefaultAcquireTimeout
	}

	return &locationRepository{
		db:      db,
		schemas: schemas,
		timeout: timeout,
		logger:  logger,
	}
}

// FindByPostcode returns the lowest row id carrying postcode, with or without its space.
func (repo *locationRepository) FindByPostcode(ctx context.Context, postcode string) (*entity.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	schema, err := repo.schema(ctx)
	if err != nil {
		return nil, err
	}

	q := newQuery(repo.db, schema)
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN ? ORDER BY %s LIMIT 1",
		q.selectList(), q.table(), q.column(ColumnPostcode), q.rowOrder())

	var rows []locationRow
	if err := repo.db.WithContext(ctx).Raw(stmt, postcodeVariants(postcode)).Scan(&rows).Error; err != nil {
		return nil, toStoreError(err, "failed to find postcode")
	}

	locations := repo.toLocations(ctx, rows)
	if len(locations) == 0 {
		return nil, repository.ErrLocationNotFound
	}

	return locations[0], nil
}

// FindByField returns up to limit rows matching filter in row id order.
func (repo *locationRepository) FindByField(ctx context.Context, filter entity.FieldFilter, limit int) ([]*entity.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	schema, err := repo.schema(ctx)
	if err != nil {
		return nil, err
	}

	q := newQuery(repo.db, schema)
	where, args, err := q.filter(filter)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT ?",
		q.selectList(), q.table(), whereClause(where), q.rowOrder())
	args = append(args, limit)

	var rows []locationRow
	if err := repo.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return nil, toStoreError(err, "failed to search locations")
	}

	return repo.toLocations(ctx, rows), nil
}

// ScanWithinBox streams every row matching filter inside bound, holding one row at a time.
func (repo *locationRepository) ScanWithinBox(ctx context.Context, filter entity.FieldFilter, bound orb.Bound, visit repository.LocationVisitor) error {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	schema, err := repo.schema(ctx)
	if err != nil {
		return err
	}

	q := newQuery(repo.db, schema)
	where, args, err := q.filter(filter)
	if err != nil {
		return err
	}

	box := fmt.Sprintf("%s BETWEEN ? AND ? AND %s BETWEEN ? AND ?",
		q.column(ColumnLatitude), q.column(ColumnLongitude))
	args = append(args, bound.Min.Lat(), bound.Max.Lat(), bound.Min.Lon(), bound.Max.Lon())

	stmt := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		q.selectList(), q.table(), whereClause(where, box), q.rowOrder())

	db := repo.db.WithContext(ctx)
	rows, err := db.Raw(stmt, args...).Rows()
	if err != nil {
		return toStoreError(err, "failed to search locations in area")
	}
	defer rows.Close()

	for rows.Next() {
		var row locationRow
		if err := db.ScanRows(rows, &row); err != nil {
			return toStoreError(err, "failed to read location")
		}

		location, ok := repo.toLocation(ctx, &row)
		if !ok {
			continue
		}
		if err := visit(location); err != nil {
			return err
		}
	}

	return toStoreError(rows.Err(), "failed to search locations in area")
}

// FindWithinRadius pushes the geofence down to the spatial engine.
func (repo *locationRepository) FindWithinRadius(ctx context.Context, filter entity.FieldFilter, fence entity.Geofence, limit int) ([]entity.GeofenceResult, error) {
	if !repo.geodesic.Load() {
		return nil, repository.ErrGeodesicUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	schema, err := repo.schema(ctx)
	if err != nil {
		return nil, err
	}

	q := newQuery(repo.db, schema)
	where, filterArgs, err := q.filter(filter)
	if err != nil {
		return nil, err
	}

	distanceExpr, withinExpr := q.geodesic()
	notNull := fmt.Sprintf("%s IS NOT NULL AND %s IS NOT NULL",
		q.column(ColumnLatitude), q.column(ColumnLongitude))

	stmt := fmt.Sprintf("SELECT %s, %s AS distance FROM %s%s ORDER BY distance, %s, %s LIMIT ?",
		q.selectList(), distanceExpr, q.table(), whereClause(where, notNull, withinExpr),
		q.column(ColumnPostcode), q.rowOrder())

	args := make([]any, 0, len(filterArgs)+6)
	args = append(args, fence.Lon(), fence.Lat())
	args = append(args, filterArgs...)
	args = append(args, fence.Lon(), fence.Lat(), fence.RadiusMeters, limit)

	var rows []locationRow
	if err := repo.db.WithContext(ctx).Raw(stmt, args...).Scan(&rows).Error; err != nil {
		return nil, toStoreError(err, "failed to search locations within radius")
	}

	results := make([]entity.GeofenceResult, 0, len(rows))
	for i := range rows {
		location, ok := repo.toLocation(ctx, &rows[i])
		if !ok {
			continue
		}
		meters := rows[i].Distance.Float64
		results = append(results, entity.GeofenceResult{
			Location:       location,
			DistanceMeters: meters,
			WithinGeofence: meters <= fence.RadiusMeters,
		})
	}

	return results, nil
}

// GeodesicDistance measures one pair with the spatial engine.
func (repo *locationRepository) GeodesicDistance(ctx context.Context, from, to orb.Point) (float64, error) {
	if !repo.geodesic.Load() {
		return 0, repository.ErrGeodesicUnsupported
	}

	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	var stmt string
	if dialect(repo.db) == dialectPostgres {
		stmt = "SELECT ST_Distance(" + pgPoint("?", "?") + ", " + pgPoint("?", "?") + ")"
	} else {
		stmt = "SELECT ST_Distance(" + spatialitePoint("?", "?") + ", " + spatialitePoint("?", "?") + ", 1)"
	}

	var meters sql.NullFloat64
	if err := repo.db.WithContext(ctx).Raw(stmt, from.Lon(), from.Lat(), to.Lon(), to.Lat()).Row().Scan(&meters); err != nil {
		return 0, toStoreError(err, "failed to measure distance")
	}
	if !meters.Valid {
		return 0, domainerrors.NewDatabaseExecuteError(nil, "spatial engine returned no distance")
	}

	return meters.Float64, nil
}

// ProbeGeodesic checks once for PostGIS or SpatiaLite.
func (repo *locationRepository) ProbeGeodesic(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	probe := "SELECT spatialite_version()"
	if dialect(repo.db) == dialectPostgres {
		probe = "SELECT PostGIS_Version()"
	}

	var version sql.NullString
	if err := repo.db.WithContext(ctx).Raw(probe).Row().Scan(&version); err != nil {
		repo.logger.Debug("Spatial engine probe failed", slog.Any("error", err))
		repo.geodesic.Store(false)

		return false
	}

	repo.logger.Info("Spatial engine detected", slog.String("version", version.String))
	repo.geodesic.Store(true)

	return true
}

// Count returns the number of rows in the location table.
func (repo *locationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	schema, err := repo.schema(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	stmt := "SELECT COUNT(*) FROM " + newQuery(repo.db, schema).table()
	if err := repo.db.WithContext(ctx).Raw(stmt).Row().Scan(&count); err != nil {
		return 0, toStoreError(err, "failed to count locations")
	}

	return count, nil
}

// Ping verifies the connection.
func (repo *locationRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repo.timeout)
	defer cancel()

	sqlDB, err := repo.db.DB()
	if err != nil {
		return toStoreError(err, "failed to get connection pool")
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(domainerrors.ErrStoreUnavailable, err.Error())
	}

	return nil
}

func (repo *locationRepository) schema(ctx context.Context) (*Schema, error) {
	schema, err := repo.schemas.Schema(ctx)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrStoreUnavailable, err.Error())
	}

	return schema, nil
}

func (repo *locationRepository) toLocations(ctx context.Context, rows []locationRow) []*entity.Location {
	locations := make([]*entity.Location, 0, len(rows))
	for i := range rows {
		if location, ok := repo.toLocation(ctx, &rows[i]); ok {
			locations = append(locations, location)
		}
	}

	return locations
}

// toLocation converts a row. A row with exactly one coordinate is corrupt and skipped;
// a row with neither reads as (0, 0).
func (repo *locationRepository) toLocation(ctx context.Context, row *locationRow) (*entity.Location, bool) {
	if row.Latitude.Valid != row.Longitude.Valid {
		repo.logger.WarnContext(ctx, "Skipping location with a single coordinate",
			slog.Int64("rowId", row.RowID.Int64),
			slog.String("postcode", row.Postcode.String),
		)

		return nil, false
	}

	return &entity.Location{
		RowID:     row.RowID.Int64,
		Postcode:  row.Postcode.String,
		Latitude:  row.Latitude.Float64,
		Longitude: row.Longitude.Float64,
		Town:      row.Town.String,
		County:    row.County.String,
		Street1:   row.Street1.String,
		Street2:   row.Street2.String,
		District1: row.District1.String,
		District2: row.District2.String,
	}, true
}

// postcodeVariants returns the spaced and compact spellings of a normalized postcode.
func postcodeVariants(postcode string) []string {
	compact := entity.CompactPostcode(postcode)
	if compact == postcode {
		return []string{postcode}
	}

	return []string{postcode, compact}
}

// query renders SQL fragments for one schema and dialect.
type query struct {
	db     *gorm.DB
	schema *Schema
}

func newQuery(db *gorm.DB, schema *Schema) query {
	return query{db: db, schema: schema}
}

func (q query) quote(name string) string {
	var b strings.Builder
	q.db.Dialector.QuoteTo(&b, name)

	return b.String()
}

func (q query) table() string {
	return q.quote(q.schema.Table)
}

func (q query) column(logical string) string {
	return q.quote(q.schema.Columns[logical])
}

func (q query) rowExpr() string {
	switch q.schema.RowID {
	case "":
		return "0"
	case "rowid":
		return "rowid"
	default:
		return q.quote(q.schema.RowID)
	}
}

// rowOrder is the stable order of duplicates; without a row id it falls back to postcode.
func (q query) rowOrder() string {
	if q.schema.RowID == "" {
		return q.column(ColumnPostcode)
	}

	return q.rowExpr()
}

func (q query) selectList() string {
	parts := []string{q.rowExpr() + " AS row_id"}
	for _, logical := range append(append([]string{}, requiredColumns...), optionalColumns...) {
		if q.schema.Has(logical) {
			parts = append(parts, q.column(logical)+" AS "+logical)
		} else {
			parts = append(parts, "'' AS "+logical)
		}
	}

	return strings.Join(parts, ", ")
}

// filter renders the case-insensitive field filter.
func (q query) filter(filter entity.FieldFilter) (string, []any, error) {
	if filter.IsEmpty() {
		return "", nil, nil
	}

	var present []string
	for _, logical := range searchColumns[filter.Field] {
		if q.schema.Has(logical) {
			present = append(present, logical)
		}
	}
	if len(present) == 0 {
		return "", nil, domainerrors.NewUnknownFieldError(filter.Field.String(), fieldNames(q.schema.SearchableFields()))
	}

	pattern := escapeLike(strings.ToUpper(filter.Pattern))
	if filter.Field == entity.SearchFieldPostcode {
		pattern += "%"
	} else {
		pattern = "%" + pattern + "%"
	}

	clauses := make([]string, 0, len(present))
	args := make([]any, 0, len(present))
	for _, logical := range present {
		clauses = append(clauses, "UPPER("+q.column(logical)+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}

	return "(" + strings.Join(clauses, " OR ") + ")", args, nil
}

// geodesic returns the distance expression and the within-radius predicate.
// Each carries the center as (lon, lat) placeholders; the predicate also takes the radius.
func (q query) geodesic() (distance, within string) {
	lon, lat := q.column(ColumnLongitude), q.column(ColumnLatitude)

	if dialect(q.db) == dialectPostgres {
		point := pgPoint(lon, lat)
		if q.schema.Geom != "" {
			point = q.quote(q.schema.Geom)
		}
		center := pgPoint("?", "?")

		return "ST_Distance(" + point + ", " + center + ")",
			"ST_DWithin(" + point + ", " + center + ", ?)"
	}

	point := spatialitePoint(lon, lat)
	center := spatialitePoint("?", "?")

	return "ST_Distance(" + point + ", " + center + ", 1)",
		"ST_Distance(" + point + ", " + center + ", 1) <= ?"
}

func pgPoint(lon, lat string) string {
	return "ST_SetSRID(ST_MakePoint(" + lon + ", " + lat + "), 4326)::geography"
}

func spatialitePoint(lon, lat string) string {
	return "MakePoint(" + lon + ", " + lat + ", 4326)"
}

func whereClause(conditions ...string) string {
	nonEmpty := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(nonEmpty, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func fieldNames(fields []entity.SearchField) []string {
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.String()
	}

	return names
}
