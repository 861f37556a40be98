package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS types (
	ord       INTEGER PRIMARY KEY,
	name      TEXT NOT NULL UNIQUE,
	primitive INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS supertypes (
	type  TEXT NOT NULL,
	ord   INTEGER NOT NULL,
	super TEXT NOT NULL,
	PRIMARY KEY (type, ord)
);
CREATE TABLE IF NOT EXISTS fields (
	owner  TEXT NOT NULL,
	ord    INTEGER NOT NULL,
	name   TEXT NOT NULL,
	type   TEXT NOT NULL,
	static INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (owner, ord)
);
CREATE TABLE IF NOT EXISTS methods (
	owner  TEXT NOT NULL,
	ord    INTEGER NOT NULL,
	name   TEXT NOT NULL,
	ret    TEXT NOT NULL,
	static INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (owner, ord)
);
CREATE TABLE IF NOT EXISTS params (
	owner  TEXT NOT NULL,
	method INTEGER NOT NULL,
	ord    INTEGER NOT NULL,
	type   TEXT NOT NULL,
	PRIMARY KEY (owner, method, ord)
);
`

// LoadSQLite reads a snapshot written by WriteSQLite and builds a memory
// catalog from it.
func LoadSQLite(ctx context.Context, path string) (*Memory, error) {
	idx, err := ReadSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewMemory(idx)
}

// openSQLite opens path for writing, creating it when missing. A read-only
// open never creates the file.
func openSQLite(path string, readOnly bool) (*sql.DB, error) {
	dsn := path
	if readOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		dsn = (&url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}).String()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// WriteSQLite stores idx in a SQLite database at path, replacing any
// snapshot already there.
func WriteSQLite(ctx context.Context, path string, idx *Index) error {
	db, err := openSQLite(path, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating schema in %s: %w", path, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"meta", "types", "supertypes", "fields", "methods", "params"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('source', ?)`, idx.Source); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}

	for i, t := range idx.Types {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO types (ord, name, primitive) VALUES (?, ?, ?)`,
			i, t.Name, boolInt(t.Primitive)); err != nil {
			return fmt.Errorf("writing type %s: %w", t.Name, err)
		}
		for j, super := range t.Supertypes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO supertypes (type, ord, super) VALUES (?, ?, ?)`,
				t.Name, j, super); err != nil {
				return fmt.Errorf("writing supertype of %s: %w", t.Name, err)
			}
		}
		for j, f := range t.Fields {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO fields (owner, ord, name, type, static) VALUES (?, ?, ?, ?, ?)`,
				t.Name, j, f.Name, f.Type, boolInt(f.Static)); err != nil {
				return fmt.Errorf("writing field %s.%s: %w", t.Name, f.Name, err)
			}
		}
		for j, m := range t.Methods {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO methods (owner, ord, name, ret, static) VALUES (?, ?, ?, ?, ?)`,
				t.Name, j, m.Name, m.Return, boolInt(m.Static)); err != nil {
				return fmt.Errorf("writing method %s.%s: %w", t.Name, m.Name, err)
			}
			for k, p := range m.Params {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO params (owner, method, ord, type) VALUES (?, ?, ?, ?)`,
					t.Name, j, k, p); err != nil {
					return fmt.Errorf("writing param of %s.%s: %w", t.Name, m.Name, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// ReadSQLite loads the Index stored at path.
func ReadSQLite(ctx context.Context, path string) (*Index, error) {
	db, err := openSQLite(path, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	idx := &Index{}
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'source'`).Scan(&idx.Source); err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	pos := make(map[string]int)
	err = eachRow(ctx, db, `SELECT name, primitive FROM types ORDER BY ord`, func(rows *sql.Rows) error {
		var (
			t    IndexType
			prim int
		)
		if err := rows.Scan(&t.Name, &prim); err != nil {
			return err
		}
		t.Primitive = prim != 0
		pos[t.Name] = len(idx.Types)
		idx.Types = append(idx.Types, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading types from %s: %w", path, err)
	}

	err = eachRow(ctx, db, `SELECT type, super FROM supertypes ORDER BY type, ord`, func(rows *sql.Rows) error {
		var name, super string
		if err := rows.Scan(&name, &super); err != nil {
			return err
		}
		if i, ok := pos[name]; ok {
			idx.Types[i].Supertypes = append(idx.Types[i].Supertypes, super)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading supertypes: %w", err)
	}

	err = eachRow(ctx, db, `SELECT owner, name, type, static FROM fields ORDER BY owner, ord`, func(rows *sql.Rows) error {
		var (
			owner  string
			f      IndexField
			static int
		)
		if err := rows.Scan(&owner, &f.Name, &f.Type, &static); err != nil {
			return err
		}
		f.Static = static != 0
		if i, ok := pos[owner]; ok {
			idx.Types[i].Fields = append(idx.Types[i].Fields, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading fields: %w", err)
	}

	params := make(map[string]map[int][]string)
	err = eachRow(ctx, db, `SELECT owner, method, type FROM params ORDER BY owner, method, ord`, func(rows *sql.Rows) error {
		var (
			owner, typ string
			method     int
		)
		if err := rows.Scan(&owner, &method, &typ); err != nil {
			return err
		}
		if params[owner] == nil {
			params[owner] = make(map[int][]string)
		}
		params[owner][method] = append(params[owner][method], typ)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading params: %w", err)
	}

	err = eachRow(ctx, db, `SELECT owner, ord, name, ret, static FROM methods ORDER BY owner, ord`, func(rows *sql.Rows) error {
		var (
			owner  string
			ord    int
			m      IndexMethod
			static int
		)
		if err := rows.Scan(&owner, &ord, &m.Name, &m.Return, &static); err != nil {
			return err
		}
		m.Static = static != 0
		m.Params = params[owner][ord]
		if i, ok := pos[owner]; ok {
			idx.Types[i].Methods = append(idx.Types[i].Methods, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading methods: %w", err)
	}

	return idx, nil
}

func eachRow(ctx context.Context, db *sql.DB, query string, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	for rows.Next() {
		if err := fn(rows); err != nil {
			rows.Close()
			return err
		}
	}
	return closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
