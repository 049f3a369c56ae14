// Package store persists confirmed fraud cases and verified reference
// motors in SQLite. The analysis core only ever reads from it; writes
// happen through the registration commands.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// FraudRecord is one confirmed fraud case.
type FraudRecord struct {
	ID           int64
	Code         string
	Prefix       string
	OriginalCode string
	FraudType    string
	Description  string
	YearClaimed  int
	CreatedAt    time.Time
}

// OriginalRecord is one verified original motor used as reference.
type OriginalRecord struct {
	ID            int64
	Code          string
	Prefix        string
	Model         string
	Year          int
	EngravingType string
	Description   string
	CreatedAt     time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the database and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS known_frauds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL,
			prefix TEXT NOT NULL,
			original_code TEXT,
			fraud_type TEXT,
			description TEXT,
			year_claimed INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_known_frauds_code ON known_frauds(code)`,
		`CREATE INDEX IF NOT EXISTS idx_known_frauds_prefix ON known_frauds(prefix)`,
		`CREATE TABLE IF NOT EXISTS reference_motors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			prefix TEXT NOT NULL,
			model TEXT,
			year INTEGER,
			engraving_type TEXT,
			description TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reference_motors_prefix ON reference_motors(prefix)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// LookupFraud returns the confirmed fraud case matching a normalized
// code, or nil. Exact matches win; a serial-insensitive match on the same
// prefix and serial digits counts as a near match.
func (s *Store) LookupFraud(ctx context.Context, code string) (*FraudRecord, bool, error) {
	code = canonical(code)
	if code == "" {
		return nil, false, nil
	}

	rec, err := s.fraudByCode(ctx, code)
	if err != nil {
		return nil, false, err
	}
	if rec != nil {
		return rec, true, nil
	}

	// Near match: same stored code ignoring the separator.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, prefix, COALESCE(original_code,''), COALESCE(fraud_type,''),
		        COALESCE(description,''), COALESCE(year_claimed,0), created_at
		   FROM known_frauds WHERE prefix = ?`,
		prefixOf(code))
	if err != nil {
		return nil, false, fmt.Errorf("query fraud cases: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		r, err := scanFraud(rows)
		if err != nil {
			return nil, false, err
		}
		if canonical(r.Code) == code {
			return r, false, nil
		}
	}
	return nil, false, rows.Err()
}

func (s *Store) fraudByCode(ctx context.Context, code string) (*FraudRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, code, prefix, COALESCE(original_code,''), COALESCE(fraud_type,''),
		        COALESCE(description,''), COALESCE(year_claimed,0), created_at
		   FROM known_frauds WHERE code = ? LIMIT 1`, code)
	r, err := scanFraud(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanFraud(row rowScanner) (*FraudRecord, error) {
	var r FraudRecord
	var created string
	if err := row.Scan(&r.ID, &r.Code, &r.Prefix, &r.OriginalCode,
		&r.FraudType, &r.Description, &r.YearClaimed, &created); err != nil {
		return nil, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &r, nil
}

// AddFraud registers a confirmed fraud case.
func (s *Store) AddFraud(ctx context.Context, rec FraudRecord) (int64, error) {
	rec.Code = canonical(rec.Code)
	if rec.Code == "" {
		return 0, errors.New("fraud code cannot be empty")
	}
	if rec.Prefix == "" {
		rec.Prefix = prefixOf(rec.Code)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO known_frauds (code, prefix, original_code, fraud_type, description, year_claimed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Code, strings.ToUpper(rec.Prefix), rec.OriginalCode, rec.FraudType,
		rec.Description, rec.YearClaimed, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert fraud case: %w", err)
	}
	return res.LastInsertId()
}

// AddOriginal registers a verified original motor.
func (s *Store) AddOriginal(ctx context.Context, rec OriginalRecord) (int64, error) {
	rec.Code = canonical(rec.Code)
	if rec.Code == "" {
		return 0, errors.New("motor code cannot be empty")
	}
	if rec.Prefix == "" {
		rec.Prefix = prefixOf(rec.Code)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_motors (code, prefix, model, year, engraving_type, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Code, strings.ToUpper(rec.Prefix), rec.Model, rec.Year,
		strings.ToUpper(rec.EngravingType), rec.Description,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert reference motor: %w", err)
	}
	return res.LastInsertId()
}

// Originals lists verified reference motors sharing a prefix family.
func (s *Store) Originals(ctx context.Context, prefix string, limit int) ([]OriginalRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, prefix, COALESCE(model,''), COALESCE(year,0),
		        COALESCE(engraving_type,''), COALESCE(description,''), created_at
		   FROM reference_motors WHERE prefix LIKE ? ORDER BY code LIMIT ?`,
		strings.ToUpper(prefix)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("query reference motors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []OriginalRecord
	for rows.Next() {
		var r OriginalRecord
		var created string
		if err := rows.Scan(&r.ID, &r.Code, &r.Prefix, &r.Model, &r.Year,
			&r.EngravingType, &r.Description, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats returns record counts per table.
func (s *Store) Stats(ctx context.Context) (frauds, originals int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM known_frauds`).Scan(&frauds); err != nil {
		return 0, 0, err
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reference_motors`).Scan(&originals); err != nil {
		return 0, 0, err
	}
	return frauds, originals, nil
}

// canonical uppercases and strips the separator so MD09E1-B215797 and
// MD09E1B215797 compare equal.
func canonical(code string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), "-", "")
}

// prefixOf guesses the prefix portion of a canonical code: the leading
// run up to and including the final letter before the digit serial. Used
// only for indexing, never for validation.
func prefixOf(code string) string {
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	// Walk back from the end past the digit serial and its optional
	// leading letter. Seven-digit serials never carry the letter, so the
	// letter is only stripped after a six-digit run.
	i := len(code)
	for i > 0 && code[i-1] >= '0' && code[i-1] <= '9' {
		i--
	}
	if len(code)-i == 6 && i > 3 && code[i-1] >= 'A' && code[i-1] <= 'Z' {
		i--
	}
	if i <= 0 {
		return code
	}
	return code[:i]
}
