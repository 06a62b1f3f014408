package db

import (
	"context"
	"encoding/json"
)

// Statement is SQL text with positional parameters. The SQL is passed to the
// store as-is.
type Statement struct {
	SQL    string  `json:"sql"`
	Params []Value `json:"params"`
}

// NewStatement creates a Statement from native Go parameters.
func NewStatement(sql string, params ...any) Statement {
	return Statement{
		SQL:    sql,
		Params: MustValuesOf(params...),
	}
}

// BatchItem is a statement within a batch. Method is accepted from callers but
// does not change how the statement is run.
type BatchItem struct {
	Statement
	Method string `json:"method"`
}

// Row is a single result row, one value per column in the order the store
// reports them.
type Row []Value

// ResultSet is the rows returned by one statement. It is empty for statements
// that return no rows.
type ResultSet []Row

func (rs ResultSet) MarshalJSON() ([]byte, error) {
	if rs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Row(rs))
}

func (r Row) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(r))
}

type DB interface {
	// Execute runs a single statement against a pooled connection, and returns its rows.
	Execute(ctx context.Context, s Statement) (rows ResultSet, err error)
	// ExecuteBatch runs statements in order within a single transaction. If any statement fails, none of the
	// statements take effect, and no results are returned.
	ExecuteBatch(ctx context.Context, statements ...Statement) (outputs []ResultSet, err error)
	// Statements returns the dialect specific statement set for the store.
	Statements() StatementSet
}
