package sqlbridge

import (
	"context"
	"errors"
	"testing"

	"github.com/a-h/sqlbridge/db"
)

func newExecuteBatchTest(ctx context.Context, g *Gateway) func(t *testing.T) {
	return func(t *testing.T) {
		stmts := g.Statements()
		createTable(t, ctx, g, "batch_test")

		t.Run("All statements are committed together", func(t *testing.T) {
			items := []db.BatchItem{
				{Statement: stmts.Insert("batch_test", "alice", 1.5, true, nil), Method: "run"},
				{Statement: stmts.Insert("batch_test", "bob", 2.5, false, nil), Method: "run"},
				{Statement: stmts.Insert("batch_test", "charlie", 3.5, true, nil), Method: "run"},
			}
			outputs, err := g.ExecuteBatch(ctx, items)
			if err != nil {
				t.Fatalf("unexpected error executing batch: %v", err)
			}
			if len(outputs) != len(items) {
				t.Fatalf("expected %d result sets, got %d", len(items), len(outputs))
			}
			for i, rs := range outputs {
				if rs == nil || len(rs) != 0 {
					t.Errorf("result set %d: expected empty result set, got %v", i, rs)
				}
			}
			if n := count(t, ctx, g, "batch_test"); n != 3 {
				t.Errorf("expected 3 rows, got %d", n)
			}
		})
		t.Run("A failing statement rolls back the whole batch", func(t *testing.T) {
			items := []db.BatchItem{
				{Statement: stmts.Insert("batch_test", "dave", 1, true, nil), Method: "run"},
				{Statement: stmts.Insert("batch_test", "erin", 2, true, nil), Method: "run"},
				// The name is already taken.
				{Statement: stmts.Insert("batch_test", "alice", 3, true, nil), Method: "run"},
			}
			outputs, err := g.ExecuteBatch(ctx, items)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if outputs != nil {
				t.Errorf("expected no outputs, got %v", outputs)
			}
			var se *db.StatementError
			if !errors.As(err, &se) {
				t.Fatalf("expected statement error, got %T: %v", err, err)
			}
			if se.Index != 2 {
				t.Errorf("expected failing index 2, got %d", se.Index)
			}
			for _, name := range []string{"dave", "erin"} {
				rows := mustExecute(t, ctx, g, stmts.SelectByName("batch_test", name))
				if len(rows) != 0 {
					t.Errorf("expected %q to be rolled back, got %v", name, rows)
				}
			}
			if n := count(t, ctx, g, "batch_test"); n != 3 {
				t.Errorf("expected 3 rows, got %d", n)
			}
		})
		t.Run("Result sets are returned in input order", func(t *testing.T) {
			queries := []db.Statement{
				stmts.SelectByName("batch_test", "charlie"),
				stmts.SelectAll("batch_test"),
				stmts.SelectByName("batch_test", "alice"),
			}
			items := make([]db.BatchItem, len(queries))
			for i, q := range queries {
				items[i] = db.BatchItem{Statement: q, Method: "all"}
			}
			outputs, err := g.ExecuteBatch(ctx, items)
			if err != nil {
				t.Fatalf("unexpected error executing batch: %v", err)
			}
			if len(outputs) != len(queries) {
				t.Fatalf("expected %d result sets, got %d", len(queries), len(outputs))
			}
			for i, q := range queries {
				expected := mustExecute(t, ctx, g, q)
				if len(expected) != len(outputs[i]) {
					t.Fatalf("result set %d: expected %d rows, got %d", i, len(expected), len(outputs[i]))
				}
				for j := range expected {
					expectValuesEqual(t, expected[j], outputs[i][j])
				}
			}
			if len(outputs[1]) != 3 {
				t.Errorf("expected 3 rows from select all, got %d", len(outputs[1]))
			}
		})
		t.Run("Reads see earlier writes in the same batch", func(t *testing.T) {
			t.Cleanup(func() {
				if _, err := execute(context.Background(), g, stmts.DropTable("batch_read_test")); err != nil {
					t.Errorf("unexpected error dropping table: %v", err)
				}
			})
			insert := stmts.Insert("batch_read_test", "grace", 2.5, true, nil)
			var expectedInsert db.ResultSet
			if rs, ok := stmts.(db.ReturningStatementSet); ok {
				insert = rs.InsertReturning("batch_read_test", "grace", 2.5, true, nil)
				expectedInsert = db.ResultSet{{db.Text("grace"), db.Float(2.5)}}
			}
			items := []db.BatchItem{
				{Statement: stmts.DropTable("batch_read_test"), Method: "run"},
				{Statement: stmts.CreateTable("batch_read_test"), Method: "run"},
				{Statement: insert, Method: "values"},
				{Statement: stmts.SelectByName("batch_read_test", "grace"), Method: "all"},
			}
			outputs, err := g.ExecuteBatch(ctx, items)
			if err != nil {
				t.Fatalf("unexpected error executing batch: %v", err)
			}
			if len(outputs) != len(items) {
				t.Fatalf("expected %d result sets, got %d", len(items), len(outputs))
			}
			for i := range 2 {
				if len(outputs[i]) != 0 {
					t.Errorf("result set %d: expected no rows, got %v", i, outputs[i])
				}
			}
			if len(outputs[2]) != len(expectedInsert) {
				t.Fatalf("expected %d rows from the insert, got %v", len(expectedInsert), outputs[2])
			}
			for i := range expectedInsert {
				expectValuesEqual(t, expectedInsert[i], outputs[2][i])
			}
			if len(outputs[3]) != 1 {
				t.Fatalf("expected the select to see the inserted row, got %v", outputs[3])
			}
			expectValuesEqual(t, db.Row{db.Text("grace"), db.Float(2.5)}, outputs[3][0][1:3])
		})
		t.Run("A failure after a successful read rolls back the batch", func(t *testing.T) {
			items := []db.BatchItem{
				{Statement: stmts.Insert("batch_test", "frank", 1, true, nil), Method: "run"},
				{Statement: stmts.SelectByName("batch_test", "frank"), Method: "all"},
				// The name is already taken.
				{Statement: stmts.Insert("batch_test", "alice", 3, true, nil), Method: "run"},
			}
			outputs, err := g.ExecuteBatch(ctx, items)
			if outputs != nil {
				t.Errorf("expected no outputs, got %v", outputs)
			}
			var se *db.StatementError
			if !errors.As(err, &se) {
				t.Fatalf("expected statement error, got %T: %v", err, err)
			}
			if se.Index != 2 {
				t.Errorf("expected failing index 2, got %d", se.Index)
			}
			if rows := mustExecute(t, ctx, g, stmts.SelectByName("batch_test", "frank")); len(rows) != 0 {
				t.Errorf("expected frank to be rolled back, got %v", rows)
			}
			if n := count(t, ctx, g, "batch_test"); n != 3 {
				t.Errorf("expected 3 rows, got %d", n)
			}
		})
		t.Run("Empty batches succeed", func(t *testing.T) {
			outputs, err := g.ExecuteBatch(ctx, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(outputs) != 0 {
				t.Errorf("expected no result sets, got %d", len(outputs))
			}
		})
	}
}
