package sqlbridge

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/a-h/sqlbridge/db"
	"github.com/a-h/sqlbridge/db/stmts"
	"github.com/spf13/afero"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// OpenSqlite ensures the directory containing path exists, then opens a pool
// of connections to the database file at path, creating it if missing.
func OpenSqlite(fs afero.Fs, path string, poolSize int) (*sqlitex.Pool, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open: error creating data directory: %w", err)
	}
	pool, err := sqlitex.NewPool("file:"+filepath.ToSlash(path)+"?mode=rwc", sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareSqliteConn,
	})
	if err != nil {
		return nil, fmt.Errorf("open: error opening %q: %w", path, err)
	}
	return pool, nil
}

// Pragmas are run one at a time, outside a transaction, because the journal
// mode can't be changed within one.
var sqlitePragmas = []string{
	"pragma journal_mode = wal;",
	"pragma busy_timeout = 5000;",
	"pragma foreign_keys = on;",
}

func prepareSqliteConn(conn *sqlite.Conn) error {
	for _, pragma := range sqlitePragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("error running %q: %w", pragma, err)
		}
	}
	return nil
}

func NewSqlite(pool *sqlitex.Pool) *Sqlite {
	return &Sqlite{
		pool: pool,
	}
}

type Sqlite struct {
	pool *sqlitex.Pool
}

func (s *Sqlite) isDB() db.DB { return s }

func (s *Sqlite) Execute(ctx context.Context, statement db.Statement) (rows db.ResultSet, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("execute: error taking connection: %w", err)
	}
	defer s.pool.Put(conn)

	rows, err = executeSqlite(conn, statement)
	if err != nil {
		return nil, db.NewStatementError(0, err)
	}
	return rows, nil
}

func (s *Sqlite) ExecuteBatch(ctx context.Context, statements ...db.Statement) (outputs []db.ResultSet, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("execute batch: error taking connection: %w", err)
	}
	defer s.pool.Put(conn)

	// The write lock is taken up front, so a batch can't fail part way
	// through when upgrading from a read lock.
	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return nil, db.NewTransactionError("begin", err)
	}
	defer func() {
		stmtErr := err
		endFn(&err)
		if stmtErr == nil && err != nil {
			err = db.NewTransactionError("commit", err)
		}
		if err != nil {
			outputs = nil
		}
	}()

	outputs = make([]db.ResultSet, len(statements))
	for i, statement := range statements {
		if outputs[i], err = executeSqlite(conn, statement); err != nil {
			return nil, db.NewStatementError(i, err)
		}
	}
	return outputs, nil
}

func (s *Sqlite) Statements() db.StatementSet {
	return stmts.SQLite{}
}

// executeSqlite runs each statement in the SQL text in order. Positional
// params are consumed across the statements in the order their placeholders
// appear. The rows of the last statement that returns columns are returned.
func executeSqlite(conn *sqlite.Conn, statement db.Statement) (rows db.ResultSet, err error) {
	bindings := db.EncodeAll(statement.Params)
	rows = db.ResultSet{}
	remaining := statement.SQL
	for !isBlankSQL(remaining) {
		stmt, trailingBytes, err := conn.PrepareTransient(remaining)
		if err != nil {
			return nil, err
		}
		consumed := remaining[:len(remaining)-trailingBytes]
		remaining = remaining[len(remaining)-trailingBytes:]
		if isBlankSQL(consumed) {
			// Comments and bare semicolons prepare to a statement with no program.
			stmt.Finalize()
			if consumed == "" {
				return nil, fmt.Errorf("sqlite: unable to prepare %q", remaining)
			}
			continue
		}

		n := min(stmt.BindParamCount(), len(bindings))
		for i, b := range bindings[:n] {
			bindSqlite(stmt, i+1, b)
		}
		bindings = bindings[n:]

		stmtRows, hasColumns, err := stepSqlite(stmt)
		stmt.Finalize()
		if err != nil {
			return nil, err
		}
		if hasColumns {
			rows = stmtRows
		}
	}
	if len(bindings) > 0 {
		return nil, fmt.Errorf("sqlite: %d parameters were supplied, but only %d are used", len(statement.Params), len(statement.Params)-len(bindings))
	}
	return rows, nil
}

func stepSqlite(stmt *sqlite.Stmt) (rows db.ResultSet, hasColumns bool, err error) {
	rows = db.ResultSet{}
	cells := make([]sqliteCell, stmt.ColumnCount())
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, false, err
		}
		if !hasRow {
			break
		}
		for col := range cells {
			cells[col] = sqliteCell{stmt: stmt, col: col}
		}
		rows = append(rows, db.DecodeRow(cells))
	}
	return rows, len(cells) > 0, nil
}

// isBlankSQL reports whether sql holds only whitespace, comments and
// semicolons, which SQLite treats as an empty program.
func isBlankSQL(sql string) bool {
	for i := 0; i < len(sql); {
		switch {
		case strings.IndexByte(" \t\n\r\f;", sql[i]) >= 0:
			i++
		case strings.HasPrefix(sql[i:], "--"):
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				return true
			}
			i += end + 1
		case strings.HasPrefix(sql[i:], "/*"):
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return true
			}
			i += end + 4
		default:
			return false
		}
	}
	return true
}

func bindSqlite(stmt *sqlite.Stmt, param int, b db.Binding) {
	switch b.Kind {
	case db.KindBool:
		stmt.BindBool(param, b.Bool)
	case db.KindInt:
		stmt.BindInt64(param, b.Int)
	case db.KindFloat:
		stmt.BindFloat(param, b.Float)
	case db.KindText:
		stmt.BindText(param, b.Text)
	default:
		stmt.BindNull(param)
	}
}

// sqliteCell reads the storage class of the current value. SQLite has no
// boolean storage class, so booleans are read back as integers.
type sqliteCell struct {
	stmt *sqlite.Stmt
	col  int
}

func (c sqliteCell) Int64() (int64, bool) {
	if c.stmt.ColumnType(c.col) != sqlite.TypeInteger {
		return 0, false
	}
	return c.stmt.ColumnInt64(c.col), true
}

func (c sqliteCell) Float64() (float64, bool) {
	if c.stmt.ColumnType(c.col) != sqlite.TypeFloat {
		return 0, false
	}
	return c.stmt.ColumnFloat(c.col), true
}

func (c sqliteCell) Text() (string, bool) {
	if c.stmt.ColumnType(c.col) != sqlite.TypeText {
		return "", false
	}
	return c.stmt.ColumnText(c.col), true
}

func (c sqliteCell) Bool() (bool, bool) {
	return false, false
}
