package roster

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// PostgresRepository reads the roster from a single table with fio, year
// and klass columns. Legacy deployments store year/klass as numeric with
// a fractional suffix; comparing against integer parameters is exact
// either way, so that encoding never leaves the store.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

func NewPostgresRepository(db *sql.DB, table string) (*PostgresRepository, error) {
	if !validIdent(table) {
		return nil, fmt.Errorf("invalid roster table name: %q", table)
	}
	return &PostgresRepository{db: db, table: table}, nil
}

func (r *PostgresRepository) FindCandidates(ctx context.Context, year, klass int) ([]Record, error) {
	q := fmt.Sprintf(`SELECT fio FROM %s WHERE year = $1 AND klass = $2`, r.table)
	rows, err := r.db.QueryContext(ctx, q, year, klass)
	if err != nil {
		return nil, fmt.Errorf("roster query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Record
	for rows.Next() {
		var fio sql.NullString
		if err := rows.Scan(&fio); err != nil {
			return nil, fmt.Errorf("roster scan: %w", err)
		}
		out = append(out, Record{FullName: fio.String, Year: year, Klass: klass})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roster rows: %w", err)
	}
	return out, nil
}

// RecordEnrollment sets in_chat and tg_username on the matched row. The
// name comparison is ё/е-insensitive in both directions, same as the
// matcher.
func (r *PostgresRepository) RecordEnrollment(ctx context.Context, rec Record, handle string, when time.Time) error {
	q := fmt.Sprintf(`
        UPDATE %s
        SET in_chat = $1, tg_username = $2
        WHERE year = $3 AND klass = $4 AND (
            lower(replace(fio, 'ё', 'е')) = lower(replace($5, 'ё', 'е'))
            OR lower(replace(fio, 'е', 'ё')) = lower(replace($5, 'е', 'ё'))
        )
    `, r.table)
	res, err := r.db.ExecContext(ctx, q, when.Format("2006-01-02"), handle, rec.Year, rec.Klass, rec.FullName)
	if err != nil {
		return fmt.Errorf("enrollment update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.Printf("⚠️ enrollment update matched no rows: %q %d-%d", rec.FullName, rec.Year, rec.Klass)
	}
	return nil
}

// validIdent accepts plain SQL identifiers; the table name comes from
// config and is interpolated into queries.
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
