package sqlbridge

import (
	"context"
	"fmt"

	"github.com/a-h/sqlbridge/db"
	"github.com/a-h/sqlbridge/db/stmts"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool: pool,
	}
}

type Postgres struct {
	pool *pgxpool.Pool
}

func (p *Postgres) isDB() db.DB { return p }

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (p *Postgres) Execute(ctx context.Context, statement db.Statement) (rows db.ResultSet, err error) {
	rows, err = executePostgres(ctx, p.pool, statement)
	if err != nil {
		return nil, db.NewStatementError(0, err)
	}
	return rows, nil
}

func (p *Postgres) ExecuteBatch(ctx context.Context, statements ...db.Statement) (outputs []db.ResultSet, err error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, db.NewTransactionError("begin", err)
	}
	// Rollback is a no-op once the transaction has been committed.
	defer tx.Rollback(context.WithoutCancel(ctx))

	outputs = make([]db.ResultSet, len(statements))
	for i, statement := range statements {
		if outputs[i], err = executePostgres(ctx, tx, statement); err != nil {
			return nil, db.NewStatementError(i, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, db.NewTransactionError("commit", err)
	}
	return outputs, nil
}

func (p *Postgres) Statements() db.StatementSet {
	return stmts.Postgres{}
}

func executePostgres(ctx context.Context, q querier, statement db.Statement) (rs db.ResultSet, err error) {
	rows, err := q.Query(ctx, statement.SQL, db.Args(statement.Params)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	binary := make([]bool, len(rows.FieldDescriptions()))
	for i, fd := range rows.FieldDescriptions() {
		binary[i] = fd.DataTypeOID == pgtype.ByteaOID
	}

	rs = db.ResultSet{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("error reading row: %w", err)
		}
		cells := make([]postgresCell, len(values))
		for i, v := range values {
			cells[i] = postgresCell{NativeCell: db.NativeCell{V: v, Binary: binary[i]}}
		}
		rs = append(rs, db.DecodeRow(cells))
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// postgresCell adds support for numeric columns, which pgx returns as
// pgtype.Numeric.
type postgresCell struct {
	db.NativeCell
}

func (c postgresCell) Int64() (int64, bool) {
	if n, ok := c.V.(pgtype.Numeric); ok {
		i, err := n.Int64Value()
		return i.Int64, err == nil && i.Valid
	}
	return c.NativeCell.Int64()
}

func (c postgresCell) Float64() (float64, bool) {
	if n, ok := c.V.(pgtype.Numeric); ok {
		f, err := n.Float64Value()
		return f.Float64, err == nil && f.Valid
	}
	return c.NativeCell.Float64()
}
