package sqlbridge

import (
	"context"
	"errors"
	"testing"

	"github.com/a-h/sqlbridge/db"
)

func newExecuteTest(ctx context.Context, g *Gateway) func(t *testing.T) {
	return func(t *testing.T) {
		stmts := g.Statements()
		createTable(t, ctx, g, "execute_test")

		t.Run("Non-query statements return an empty result set", func(t *testing.T) {
			rows, err := execute(ctx, g, stmts.Insert("execute_test", "alice", 1.5, true, []string{"a", "b"}))
			if err != nil {
				t.Fatalf("unexpected error inserting: %v", err)
			}
			if rows == nil {
				t.Fatal("expected empty result set, got nil")
			}
			if len(rows) != 0 {
				t.Errorf("expected no rows, got %d", len(rows))
			}
		})
		t.Run("Effects are visible to the next call", func(t *testing.T) {
			rows := mustExecute(t, ctx, g, stmts.SelectByName("execute_test", "alice"))
			if len(rows) != 1 {
				t.Fatalf("expected 1 row, got %d", len(rows))
			}
			row := rows[0]
			if len(row) != 5 {
				t.Fatalf("expected 5 columns, got %d", len(row))
			}
			if row[0].Kind() != db.KindInt {
				t.Errorf("expected id to be an int, got %v", row[0].Kind())
			}
			expectValuesEqual(t, db.Row{db.Text("alice"), db.Float(1.5)}, row[1:3])
			expectBool(t, true, row[3])
		})
		t.Run("Complex parameters are read back as text", func(t *testing.T) {
			tags := map[string]any{"z": 1, "a": []any{"x", nil}}
			mustExecute(t, ctx, g, stmts.Insert("execute_test", "complex", 0.5, false, tags))

			rows := mustExecute(t, ctx, g, stmts.SelectByName("execute_test", "complex"))
			if len(rows) != 1 {
				t.Fatalf("expected 1 row, got %d", len(rows))
			}
			expected := db.Text(`{"a":["x",null],"z":1}`)
			if !expected.Equal(rows[0][4]) {
				t.Errorf("expected %v, got %v %v", expected, rows[0][4].Kind(), rows[0][4])
			}
			expectBool(t, false, rows[0][3])
		})
		t.Run("Queries without matches return an empty result set", func(t *testing.T) {
			rows := mustExecute(t, ctx, g, stmts.SelectByName("execute_test", "nobody"))
			if rows == nil || len(rows) != 0 {
				t.Errorf("expected empty result set, got %v", rows)
			}
		})
		t.Run("Constraint violations are statement errors", func(t *testing.T) {
			_, err := execute(ctx, g, stmts.Insert("execute_test", "alice", 2, false, nil))
			if err == nil {
				t.Fatal("expected error inserting duplicate name, got nil")
			}
			var se *db.StatementError
			if !errors.As(err, &se) {
				t.Fatalf("expected statement error, got %T: %v", err, err)
			}
			if se.Index != 0 {
				t.Errorf("expected index 0, got %d", se.Index)
			}
			if db.Code(err) != db.CodeStatement {
				t.Errorf("expected code %q, got %q", db.CodeStatement, db.Code(err))
			}
			if n := count(t, ctx, g, "execute_test"); n != 2 {
				t.Errorf("expected 2 rows, got %d", n)
			}
		})
		t.Run("Malformed SQL is a statement error", func(t *testing.T) {
			_, err := g.Execute(ctx, "selec nothing from", nil)
			if db.Code(err) != db.CodeStatement {
				t.Errorf("expected statement error, got %v", err)
			}
		})
	}
}
