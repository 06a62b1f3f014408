package sqlbridge

import (
	"context"
	"testing"

	"github.com/a-h/sqlbridge/db"
)

func runGatewayTests(t *testing.T, store db.DB) {
	ctx := context.Background()
	g := New()
	err := g.Init(ctx, func(ctx context.Context) (db.DB, error) {
		return store, nil
	})
	if err != nil {
		t.Fatalf("unexpected error initializing gateway: %v", err)
	}

	t.Run("Execute", newExecuteTest(ctx, g))
	t.Run("ExecuteBatch", newExecuteBatchTest(ctx, g))
	t.Run("Concurrent", newConcurrentTest(ctx, g))
}

func execute(ctx context.Context, g *Gateway, s db.Statement) (db.ResultSet, error) {
	return g.Execute(ctx, s.SQL, s.Params)
}

func mustExecute(t *testing.T, ctx context.Context, g *Gateway, s db.Statement) db.ResultSet {
	t.Helper()
	rows, err := execute(ctx, g, s)
	if err != nil {
		t.Fatalf("unexpected error executing %q: %v", s.SQL, err)
	}
	return rows
}

// createTable creates a table, and drops it at the end of the test.
func createTable(t *testing.T, ctx context.Context, g *Gateway, table string) {
	t.Helper()
	stmts := g.Statements()
	mustExecute(t, ctx, g, stmts.DropTable(table))
	mustExecute(t, ctx, g, stmts.CreateTable(table))
	t.Cleanup(func() {
		if _, err := execute(context.Background(), g, stmts.DropTable(table)); err != nil {
			t.Errorf("unexpected error dropping table %q: %v", table, err)
		}
	})
}

func count(t *testing.T, ctx context.Context, g *Gateway, table string) int64 {
	t.Helper()
	rows := mustExecute(t, ctx, g, g.Statements().Count(table))
	if len(rows) != 1 || len(rows[0]) != 1 {
		t.Fatalf("expected a single count, got %v", rows)
	}
	if rows[0][0].Kind() != db.KindInt {
		t.Fatalf("expected count to be an int, got %v", rows[0][0].Kind())
	}
	return rows[0][0].IntValue()
}

// expectBool checks a boolean read back from the store. Stores without a
// boolean type return 0 or 1, which decode as integers first.
func expectBool(t *testing.T, expected bool, actual db.Value) {
	t.Helper()
	switch actual.Kind() {
	case db.KindBool:
		if actual.BoolValue() != expected {
			t.Errorf("expected %v, got %v", expected, actual)
		}
	case db.KindInt:
		var expectedInt int64
		if expected {
			expectedInt = 1
		}
		if actual.IntValue() != expectedInt {
			t.Errorf("expected %d, got %v", expectedInt, actual)
		}
	default:
		t.Errorf("expected bool or int, got %v %v", actual.Kind(), actual)
	}
}

func expectValuesEqual(t *testing.T, expected, actual db.Row) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("expected %d values, got %d: %v", len(expected), len(actual), actual)
	}
	for i := range expected {
		if !expected[i].Equal(actual[i]) {
			t.Errorf("value %d: expected %v %v, got %v %v", i, expected[i].Kind(), expected[i], actual[i].Kind(), actual[i])
		}
	}
}
