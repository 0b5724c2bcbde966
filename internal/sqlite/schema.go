package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// Schema DDL. Every statement is idempotent so that opening an existing
// database is a no-op.
const (
	createBookmarks = `CREATE TABLE IF NOT EXISTS bookmarks (
    file TEXT,
    id TEXT,
    page INTEGER,
    hadj_ratio FLOAT,
    vadj_ratio FLOAT,
    PRIMARY KEY (file, id)
);`

	createFileinfo = `CREATE TABLE IF NOT EXISTS fileinfo (
    file TEXT PRIMARY KEY,
    page INTEGER,
    offset INTEGER,
    scale FLOAT,
    rotation INTEGER,
    pages_per_row INTEGER,
    first_page_column TEXT,
    position_x FLOAT,
    position_y FLOAT,
    time TIMESTAMP
);`

	createJumplist = `CREATE TABLE IF NOT EXISTS jumplist (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file TEXT,
    page INTEGER,
    hadj_ratio FLOAT,
    vadj_ratio FLOAT
);`

	createHistory = `CREATE TABLE IF NOT EXISTS history (
    time TIMESTAMP,
    line TEXT,
    PRIMARY KEY (line)
);`

	idxJumplistFile = `CREATE INDEX IF NOT EXISTS idx_jumplist_file ON jumplist(file);`
)

// schemaDDL lists the statements run on every open.
var schemaDDL = []string{
	createBookmarks,
	createFileinfo,
	createJumplist,
	createHistory,
	idxJumplistFile,
}

// addedColumn is a column introduced after the first schema version. Older
// databases lack it and get it added on open.
type addedColumn struct {
	table  string
	column string
	decl   string
}

var addedColumns = []addedColumn{
	{"fileinfo", "pages_per_row", "INTEGER"},
	{"fileinfo", "first_page_column", "TEXT"},
	{"fileinfo", "position_x", "FLOAT"},
	{"fileinfo", "position_y", "FLOAT"},
	{"fileinfo", "time", "TIMESTAMP"},
	{"bookmarks", "hadj_ratio", "FLOAT"},
	{"bookmarks", "vadj_ratio", "FLOAT"},
}

// fileinfoColumns is the column list copied when fileinfo is rebuilt.
const fileinfoColumns = "file, page, offset, scale, rotation, pages_per_row, first_page_column, position_x, position_y, time"

// migrate creates missing tables, adds missing columns, and corrects the type
// of fileinfo.first_page_column.
func migrate(db *sql.DB, log *slog.Logger) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := addMissingColumns(db, log); err != nil {
		return err
	}
	return fixFirstPageColumnType(db, log)
}

// tableColumns returns the declared type of each column of table, keyed by
// lower-case column name.
func tableColumns(q interface {
	Query(query string, args ...any) (*sql.Rows, error)
}, table string) (map[string]string, error) {
	rows, err := q.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]string)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning columns of %s: %w", table, err)
		}
		cols[strings.ToLower(name)] = strings.ToUpper(ctype)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	return cols, nil
}

// addMissingColumns checks each added column and creates the absent ones in
// a single transaction.
func addMissingColumns(db *sql.DB, log *slog.Logger) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning column migration: %w", err)
	}
	defer tx.Rollback()

	existing := make(map[string]map[string]string)
	for _, c := range addedColumns {
		cols, ok := existing[c.table]
		if !ok {
			cols, err = tableColumns(tx, c.table)
			if err != nil {
				return err
			}
			existing[c.table] = cols
		}
		if _, ok := cols[c.column]; ok {
			continue
		}

		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.decl)
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("adding %s.%s: %w", c.table, c.column, err)
		}
		cols[c.column] = c.decl
		log.Info("sqlite: added column", "table", c.table, "column", c.column)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing column migration: %w", err)
	}
	return nil
}

// fixFirstPageColumnType rebuilds fileinfo when first_page_column was created
// with a numeric type. SQLite cannot alter a column type, so the table is
// renamed aside, recreated, refilled, and the old copy dropped. The whole
// sequence is one transaction; on failure the original table is untouched.
func fixFirstPageColumnType(db *sql.DB, log *slog.Logger) error {
	cols, err := tableColumns(db, "fileinfo")
	if err != nil {
		return err
	}
	if cols["first_page_column"] == "TEXT" {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning fileinfo rebuild: %w", err)
	}
	defer tx.Rollback()

	steps := []string{
		"ALTER TABLE fileinfo RENAME TO fileinfo_old",
		createFileinfo,
		fmt.Sprintf("INSERT INTO fileinfo (%[1]s) SELECT %[1]s FROM fileinfo_old", fileinfoColumns),
		"DROP TABLE fileinfo_old",
	}
	for _, stmt := range steps {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("rebuilding fileinfo: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing fileinfo rebuild: %w", err)
	}
	log.Info("sqlite: rebuilt fileinfo", "column", "first_page_column", "type", "TEXT")
	return nil
}
