package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"treesync/config"
	"treesync/trees"
)

// Store owns the connection pool and the write path of the trees table.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects the configured driver, applies pool limits, and ensures the
// destination schema exists.
func Open(cfg config.Config) (*Store, error) {
	var (
		d   dialect
		dsn string
	)
	switch cfg.DBDriver {
	case config.DriverSQLite:
		d = sqliteDialect()
		dsn = cfg.DBPath
	case config.DriverMySQL:
		d = mysqlDialect()
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = cfg.DBHost + ":" + strconv.Itoa(cfg.DBPort)
		mc.DBName = cfg.DBName
		dsn = mc.FormatDSN()
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, dialect: d}
	if err := s.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the shared pool for read-only consumers.
func (s *Store) DB() *sql.DB { return s.db }

// EnsureSchema creates the trees table and its source-id unique index. A
// no-op when both already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Load is one sync run's transactional write scope. Either Commit or
// Rollback must be called; a rolled-back run leaves zero new rows.
type Load struct {
	tx     *sql.Tx
	upsert string
}

// BeginLoad opens the run transaction.
func (s *Store) BeginLoad(ctx context.Context) (*Load, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin load: %w", err)
	}
	return &Load{tx: tx, upsert: s.dialect.upsert}, nil
}

// UpsertPage persists one page of records, inserting or updating keyed on
// arbres_idbase. Records with a null source id are always inserted.
func (l *Load) UpsertPage(ctx context.Context, records []trees.Record) (int, error) {
	stmt, err := l.tx.PrepareContext(ctx, l.upsert)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	loaded := 0
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, recordArgs(rec)...); err != nil {
			return loaded, fmt.Errorf("upsert tree source_id=%v: %w", derefID(rec.SourceID), err)
		}
		loaded++
	}
	return loaded, nil
}

func (l *Load) Commit() error   { return l.tx.Commit() }
func (l *Load) Rollback() error { return l.tx.Rollback() }

// GetBySourceID looks one row up by its external identifier.
func (s *Store) GetBySourceID(ctx context.Context, sourceID int64) (*trees.Record, error) {
	query := `SELECT id, geom_lon, geom_lat, arbres_idbase, arbres_domanialite, arbres_arrondissement,
arbres_complementadresse, arbres_numero, arbres_adresse, arbres_circonferenceencm, arbres_hauteurenm,
arbres_stadedeveloppement, arbres_pepiniere, arbres_genre, arbres_espece, arbres_varieteoucultivar,
arbres_dateplantation, arbres_libellefrancais, com_idbase, com_idarbre, com_site, com_adresse,
com_complement_adresse, com_arrondissement, com_domanialite, com_nom_usuel, com_nom_latin,
com_autorite_taxo, com_annee_plantation, com_qualification_rem, com_resume, com_descriptif,
com_delib_num, com_delib_date, com_label_arbres, com_url_pdf, com_url_photo1, com_copyright1, created_at
FROM trees WHERE arbres_idbase = ?`
	row := s.db.QueryRowContext(ctx, query, sourceID)
	return scanRecord(row)
}

// CountTrees returns the number of persisted rows.
func (s *Store) CountTrees(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trees: %w", err)
	}
	return n, nil
}

// Health returns err if the pool cannot reach the database.
func (s *Store) Health(ctx context.Context) error {
	var v int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&v); err != nil {
		return fmt.Errorf("db health: %w", err)
	}
	return nil
}

func recordArgs(rec trees.Record) []any {
	return []any{
		rec.Lon,
		rec.Lat,
		rec.SourceID,
		rec.Domain,
		rec.District,
		rec.AddressExtra,
		rec.Number,
		rec.Address,
		rec.CircumferenceCM,
		rec.HeightM,
		rec.DevelopmentStage,
		rec.Nursery,
		rec.Genus,
		rec.Species,
		rec.Variety,
		rec.PlantingDate,
		rec.CommonName,
		rec.RemarkableIDBase,
		rec.RemarkableTreeID,
		rec.Site,
		rec.RemarkableAddress,
		rec.RemarkableExtra,
		rec.RemarkableDistr,
		rec.RemarkableDomain,
		rec.UsualName,
		rec.LatinName,
		rec.TaxonAuthority,
		rec.PlantingYear,
		rec.Qualification,
		rec.Summary,
		rec.Description,
		rec.DecisionNumber,
		rec.DecisionDate,
		rec.Label,
		rec.PDFURL,
		rec.PhotoURL,
		rec.PhotoCopyright,
	}
}

func scanRecord(row *sql.Row) (*trees.Record, error) {
	var rec trees.Record
	var (
		lon, lat                                           sql.NullFloat64
		sourceID, circumference, height, comIDBase, treeID sql.NullInt64
		strs                                               [31]sql.NullString
	)
	err := row.Scan(
		&rec.ID, &lon, &lat, &sourceID,
		&strs[0], &strs[1], &strs[2], &strs[3], &strs[4],
		&circumference, &height,
		&strs[5], &strs[6], &strs[7], &strs[8], &strs[9], &strs[10], &strs[11],
		&comIDBase, &treeID,
		&strs[12], &strs[13], &strs[14], &strs[15], &strs[16], &strs[17], &strs[18],
		&strs[19], &strs[20], &strs[21], &strs[22], &strs[23], &strs[24], &strs[25],
		&strs[26], &strs[27], &strs[28], &strs[29], &strs[30],
	)
	if err != nil {
		return nil, err
	}

	rec.Lon = nullFloat(lon)
	rec.Lat = nullFloat(lat)
	rec.SourceID = nullInt(sourceID)
	rec.CircumferenceCM = nullInt(circumference)
	rec.HeightM = nullInt(height)
	rec.RemarkableIDBase = nullInt(comIDBase)
	rec.RemarkableTreeID = nullInt(treeID)

	dests := []**string{
		&rec.Domain, &rec.District, &rec.AddressExtra, &rec.Number, &rec.Address,
		&rec.DevelopmentStage, &rec.Nursery, &rec.Genus, &rec.Species, &rec.Variety,
		&rec.PlantingDate, &rec.CommonName,
		&rec.Site, &rec.RemarkableAddress, &rec.RemarkableExtra, &rec.RemarkableDistr,
		&rec.RemarkableDomain, &rec.UsualName, &rec.LatinName, &rec.TaxonAuthority,
		&rec.PlantingYear, &rec.Qualification, &rec.Summary, &rec.Description,
		&rec.DecisionNumber, &rec.DecisionDate, &rec.Label, &rec.PDFURL,
		&rec.PhotoURL, &rec.PhotoCopyright,
	}
	for i, dst := range dests {
		*dst = nullStr(strs[i])
	}
	// created_at is scanned as text; the caller treats it as opaque.
	rec.CreatedAt = nullStr(strs[30])
	return &rec, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func derefID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
