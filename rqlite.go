package sqlbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/a-h/sqlbridge/db"
	"github.com/a-h/sqlbridge/db/stmts"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
)

func NewRqlite(client *rqlitehttp.Client) *Rqlite {
	return &Rqlite{
		client:          client,
		timeout:         time.Second * 30,
		readConsistency: rqlitehttp.ReadConsistencyLevelWeak,
	}
}

// Rqlite runs statements against an rqlite cluster using the unified request
// endpoint, which accepts reads and writes in the same request.
type Rqlite struct {
	client          *rqlitehttp.Client
	timeout         time.Duration
	readConsistency rqlitehttp.ReadConsistencyLevel
}

func (rq *Rqlite) isDB() db.DB { return rq }

func (rq *Rqlite) Execute(ctx context.Context, statement db.Statement) (rows db.ResultSet, err error) {
	outputs, err := rq.request(ctx, false, statement)
	if err != nil {
		return nil, err
	}
	return outputs[0], nil
}

// ExecuteBatch runs the statements in a single rqlite transaction. rqlite
// stops at the first failing statement and rolls the transaction back.
func (rq *Rqlite) ExecuteBatch(ctx context.Context, statements ...db.Statement) (outputs []db.ResultSet, err error) {
	if len(statements) == 0 {
		return []db.ResultSet{}, nil
	}
	return rq.request(ctx, true, statements...)
}

func (rq *Rqlite) Statements() db.StatementSet {
	return stmts.SQLite{}
}

func (rq *Rqlite) request(ctx context.Context, transaction bool, statements ...db.Statement) (outputs []db.ResultSet, err error) {
	opts := &rqlitehttp.RequestOptions{
		Transaction: transaction,
		Timeout:     rq.timeout,
		Level:       rq.readConsistency,
	}
	rr, err := rq.client.Request(ctx, newRqliteStatements(statements), opts)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	for i, result := range rr.Results {
		if result.Error != "" {
			return nil, db.NewStatementError(i, errors.New(result.Error))
		}
	}
	if len(rr.Results) != len(statements) {
		return nil, fmt.Errorf("request: expected %d results, got %d", len(statements), len(rr.Results))
	}
	outputs = make([]db.ResultSet, len(statements))
	for i, result := range rr.Results {
		outputs[i] = db.ResultSet{}
		for _, values := range result.Values {
			cells := make([]db.AffinityCell, len(values))
			for col, v := range values {
				cells[col] = db.AffinityCell{V: v}
				if col < len(result.Types) {
					cells[col].DeclaredType = result.Types[col]
				}
			}
			outputs[i] = append(outputs[i], db.DecodeRow(cells))
		}
	}
	return outputs, nil
}

func newRqliteStatements(statements []db.Statement) rqlitehttp.SQLStatements {
	out := make(rqlitehttp.SQLStatements, len(statements))
	for i, s := range statements {
		out[i] = rqlitehttp.SQLStatement{
			SQL:              s.SQL,
			PositionalParams: db.Args(s.Params),
		}
	}
	return out
}
