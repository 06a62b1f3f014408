package sqlbridge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/a-h/sqlbridge/db"
	"github.com/a-h/sqlbridge/db/stmts"
)

// NewSQL runs statements using a database/sql driver. The driver name selects
// the placeholder style of the statement set.
func NewSQL(driver string, pool *sql.DB) *SQL {
	return &SQL{
		driver: driver,
		pool:   pool,
	}
}

type SQL struct {
	driver string
	pool   *sql.DB
}

func (s *SQL) isDB() db.DB { return s }

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQL) Execute(ctx context.Context, statement db.Statement) (rows db.ResultSet, err error) {
	rows, err = s.execute(ctx, s.pool, statement)
	if err != nil {
		return nil, db.NewStatementError(0, err)
	}
	return rows, nil
}

func (s *SQL) ExecuteBatch(ctx context.Context, statements ...db.Statement) (outputs []db.ResultSet, err error) {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, db.NewTransactionError("begin", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	outputs = make([]db.ResultSet, len(statements))
	for i, statement := range statements {
		if outputs[i], err = s.execute(ctx, tx, statement); err != nil {
			return nil, db.NewStatementError(i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, db.NewTransactionError("commit", err)
	}
	return outputs, nil
}

func (s *SQL) Statements() db.StatementSet {
	switch s.driver {
	case "postgres", "pgx":
		return stmts.Postgres{}
	case "mysql":
		return stmts.MySQL{}
	}
	return stmts.SQLite{}
}

func (s *SQL) execute(ctx context.Context, q sqlQuerier, statement db.Statement) (rs db.ResultSet, err error) {
	rows, err := q.QueryContext(ctx, statement.SQL, db.Args(statement.Params)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("error reading column types: %w", err)
	}
	binary := make([]bool, len(columnTypes))
	for i, ct := range columnTypes {
		name := ct.DatabaseTypeName()
		// go-sqlite3 returns text as strings, so bytes in expression columns,
		// which have no declared type, are blobs.
		binary[i] = db.IsBinaryType(name) || (name == "" && s.driver == "sqlite3")
	}

	rs = db.ResultSet{}
	values := make([]any, len(columnTypes))
	dest := make([]any, len(columnTypes))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		cells := make([]db.NativeCell, len(values))
		for i, v := range values {
			cells[i] = db.NativeCell{V: v, Binary: binary[i]}
		}
		rs = append(rs, db.DecodeRow(cells))
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
