package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/royalty-registry/interfaces"
	"github.com/ruteri/royalty-registry/storage/migrations"
	_ "modernc.org/sqlite"
)

const migrationTable = "schema_migrations"

// SQLiteStore persists royalty configs in a SQLite database, one row per asset.
// All access goes through a single connection, so updates are serialized.
// The upsert additionally refuses to overwrite a permanent row.
type SQLiteStore struct {
	sqlDB *sql.DB
	path  string
	log   *slog.Logger
}

// OpenSQLiteStore opens (creating if needed) the database at path and applies
// embedded migrations.
func OpenSQLiteStore(path string, log *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", interfaces.ErrInvalidStoreURI)
	}
	if log == nil {
		log = slog.Default()
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping sqlite db: %v", interfaces.ErrStoreUnavailable, err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Debug("Opened sqlite royalty store", slog.String("path", cleanPath))

	return &SQLiteStore{
		sqlDB: sqlDB,
		path:  cleanPath,
		log:   log,
	}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, asset interfaces.Address) (interfaces.RoyaltyConfig, bool, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.RoyaltyConfig{}, false, err
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT receiver, fee_rate, permanent, revision FROM royalty_configs WHERE asset = ?`,
		assetKey(asset))
	return scanConfig(row)
}

func (s *SQLiteStore) Update(ctx context.Context, asset interfaces.Address, fn interfaces.UpdateFunc) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", interfaces.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT receiver, fee_rate, permanent, revision FROM royalty_configs WHERE asset = ?`,
		assetKey(asset))
	current, exists, err := scanConfig(row)
	if err != nil {
		return err
	}

	next, err := fn(current, exists)
	if err != nil {
		return err
	}
	if next.FeeRate > math.MaxInt64 {
		return fmt.Errorf("%w: %d does not fit the sqlite store", interfaces.ErrInvalidFeeRate, next.FeeRate)
	}
	if next.Revision > math.MaxInt64 {
		return fmt.Errorf("revision %d does not fit the sqlite store", next.Revision)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO royalty_configs (asset, receiver, fee_rate, permanent, revision, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(asset) DO UPDATE SET
		   receiver = excluded.receiver,
		   fee_rate = excluded.fee_rate,
		   permanent = excluded.permanent,
		   revision = excluded.revision,
		   updated_at = excluded.updated_at
		 WHERE royalty_configs.permanent = 0`,
		assetKey(asset),
		next.Receiver.Hex(),
		int64(next.FeeRate),
		boolToInt(next.Permanent),
		int64(next.Revision),
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert royalty config: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert royalty config: %w", err)
	}
	if affected == 0 {
		return interfaces.ErrAlreadyLocked
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit royalty config: %w", err)
	}

	s.log.Debug("Stored royalty config in sqlite", slog.String("asset", asset.Hex()))
	return nil
}

// Available pings the database.
func (s *SQLiteStore) Available(ctx context.Context) bool {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		s.log.Debug("SQLite store unavailable", "err", err)
		return false
	}
	return true
}

func (s *SQLiteStore) Name() string {
	return fmt.Sprintf("sqlite-%s", filepath.Base(s.path))
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func scanConfig(row *sql.Row) (interfaces.RoyaltyConfig, bool, error) {
	var (
		receiver  string
		feeRate   int64
		permanent int
		revision  int64
	)
	err := row.Scan(&receiver, &feeRate, &permanent, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return interfaces.RoyaltyConfig{}, false, nil
	}
	if err != nil {
		return interfaces.RoyaltyConfig{}, false, fmt.Errorf("%w: read royalty config: %v", interfaces.ErrStoreUnavailable, err)
	}
	return interfaces.RoyaltyConfig{
		Receiver:  common.HexToAddress(receiver),
		FeeRate:   uint64(feeRate),
		Permanent: permanent != 0,
		Revision:  uint64(revision),
	}, true, nil
}

func assetKey(asset interfaces.Address) string {
	return strings.ToLower(asset.Hex())
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// applyMigrations executes embedded migrations at most once per file.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range sqlFiles {
		var found int
		err := sqlDB.QueryRow("SELECT 1 FROM "+migrationTable+" WHERE name = ?", file).Scan(&found)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", file, err)
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		upSQL := extractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration transaction %s: %w", file, err)
		}
		if _, err := tx.Exec(upSQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
			file,
			time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}

	return nil
}

// extractUpMigration returns the SQL in the -- +migrate Up section.
func extractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}
