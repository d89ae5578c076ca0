// Package recordstore owns the SQLite-backed state the HTTP layer cannot
// keep in memory: accounts, password hashes, solve history, and daily
// challenge results. The solver itself never touches this package; only
// the HTTP and CLI entry points do.
package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// OpenDB opens (and creates if missing) a SQLite database file, enabling
// WAL journaling and a busy timeout so concurrent HTTP handlers don't
// trip over each other's writes.
func OpenDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies every ./sql/*.sql file in lexical order, recording each
// in a _migrations table so it only ever runs once. Scripts containing
// their own BEGIN TRANSACTION or a foreign-key pragma toggle run outside
// the migrator's own transaction.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	root := "sql"
	var files []string
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk sql dir: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Info().Str("migration", f).Msg("already applied")
			continue
		}
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		sqlText := string(sqlBytes)

		upper := strings.ToUpper(sqlText)
		selfManaged := strings.Contains(upper, "BEGIN TRANSACTION") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS=OFF") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS = OFF")

		if selfManaged {
			if _, err := db.Exec(sqlText); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
			if _, err := db.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
				return fmt.Errorf("record %s: %w", f, err)
			}
			log.Info().Str("migration", f).Msg("applied (self-managed)")
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* -------------------------------- accounts -------------------------------- */

// User is one registered account.
type User struct {
	ID            string
	Username      string
	PasswordHash  string
	CreatedAt     time.Time
	SolvesRun     int
	BestElapsedMs int
	DailyStreak   int
}

// ErrUsernameTaken is returned by CreateUser when the username already
// exists (case-insensitively).
var ErrUsernameTaken = errors.New("recordstore: username taken")

// CreateUser hashes pw and inserts a new account row. id is supplied by
// the caller so the HTTP layer controls ID generation.
func CreateUser(ctx context.Context, db *sql.DB, id, username, pw string) (*User, error) {
	var exists int
	_ = db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if exists == 1 {
		return nil, ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, username, string(hash), now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return &User{ID: id, Username: username, PasswordHash: string(hash), CreatedAt: now}, nil
}

// CheckPassword reports whether pw matches the stored bcrypt hash.
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// FindUserByUsername looks up an account case-insensitively.
func FindUserByUsername(ctx context.Context, db *sql.DB, username string) (*User, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, solves_run, best_elapsed_ms, daily_streak
		FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

// FindUserByID looks up an account by its primary key.
func FindUserByID(ctx context.Context, db *sql.DB, id string) (*User, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, solves_run, best_elapsed_ms, daily_streak
		FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created, &u.SolvesRun, &u.BestElapsedMs, &u.DailyStreak); err != nil {
		return nil, err
	}
	t, _ := time.Parse(time.RFC3339, created)
	u.CreatedAt = t
	return &u, nil
}

// BumpSolveStats increments solves_run and, if elapsedMs beats the user's
// current best (or none is recorded yet), updates best_elapsed_ms.
func BumpSolveStats(ctx context.Context, db *sql.DB, userID string, elapsedMs int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var solvesRun, best int
	if err := tx.QueryRowContext(ctx, `SELECT solves_run, best_elapsed_ms FROM users WHERE id=?`, userID).
		Scan(&solvesRun, &best); err != nil {
		return err
	}
	solvesRun++
	if best == 0 || elapsedMs < best {
		best = elapsedMs
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET solves_run=?, best_elapsed_ms=? WHERE id=?`,
		solvesRun, best, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// BumpDailyStreak sets the user's daily_streak to streak.
func BumpDailyStreak(ctx context.Context, db *sql.DB, userID string, streak int) error {
	_, err := db.ExecContext(ctx, `UPDATE users SET daily_streak=? WHERE id=?`, streak, userID)
	return err
}

/* ------------------------------ solve history ------------------------------ */

// SolveRecord is one completed solve call, kept so a signed-in user can
// browse their own history.
type SolveRecord struct {
	UserID    string
	Hand      string // canonical "A3 B1 ..." rendering of the hand played
	Rows      int
	Cols      int
	ElapsedMs int64
	CreatedAt time.Time
}

// InsertSolveRecord logs a completed solve for a user.
func InsertSolveRecord(ctx context.Context, db *sql.DB, r SolveRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO solve_history (user_id, hand, rows, cols, elapsed_ms)
		VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.Hand, r.Rows, r.Cols, r.ElapsedMs,
	)
	return err
}

// ListSolveHistory returns a user's most recent solves, newest first.
func ListSolveHistory(ctx context.Context, db *sql.DB, userID string, limit int) ([]SolveRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, hand, rows, cols, elapsed_ms, created_at
		FROM solve_history
		WHERE user_id=?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SolveRecord, 0, limit)
	for rows.Next() {
		var r SolveRecord
		if err := rows.Scan(&r.UserID, &r.Hand, &r.Rows, &r.Cols, &r.ElapsedMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

/* --------------------------- daily hand challenge --------------------------- */

// DailyResult is one user's attempt at the daily hand challenge.
type DailyResult struct {
	UserID    string
	Date      string // "YYYY-MM-DD"
	HandSeed  string // canonical rendering of the dealt hand
	PlacedAll bool   // whether every tile in the hand was placed
	ElapsedMs int
	CreatedAt time.Time
}

// DailyLBRow is one row returned for leaderboard queries.
type DailyLBRow struct {
	UserID    string
	PlacedAll bool
	ElapsedMs int
}

// DailyAlreadyPlayed reports whether userID has already submitted a
// result for date.
func DailyAlreadyPlayed(ctx context.Context, db *sql.DB, userID, date string) (bool, error) {
	var cnt int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// InsertDailyResult inserts a new daily result row; a second submission
// for the same (user_id, date) is silently ignored, matching the table's
// UNIQUE constraint.
func InsertDailyResult(ctx context.Context, db *sql.DB, r DailyResult) error {
	_, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO daily_results
			(user_id, date, hand_seed, placed_all, elapsed_ms)
		VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.Date, r.HandSeed, r.PlacedAll, r.ElapsedMs,
	)
	return err
}

// GetDailyLeaderboard fetches the top players for date, complete solves
// ranked above incomplete ones and fastest elapsed time first.
func GetDailyLeaderboard(ctx context.Context, db *sql.DB, date string, limit int) ([]DailyLBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, placed_all, elapsed_ms
		FROM daily_results
		WHERE date=?
		ORDER BY placed_all DESC, elapsed_ms ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DailyLBRow, 0, limit)
	for rows.Next() {
		var r DailyLBRow
		if err := rows.Scan(&r.UserID, &r.PlacedAll, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
