package sqlbridge

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/a-h/sqlbridge/db"
)

func newConcurrentTest(ctx context.Context, g *Gateway) func(t *testing.T) {
	return func(t *testing.T) {
		stmts := g.Statements()
		createTable(t, ctx, g, "concurrent_test")

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				name := fmt.Sprintf("worker-%d", i)
				if _, err := execute(ctx, g, stmts.Insert("concurrent_test", name, float64(i)+0.5, i%2 == 0, nil)); err != nil {
					errs <- fmt.Errorf("%s: insert: %w", name, err)
					return
				}
				rows, err := execute(ctx, g, stmts.SelectByName("concurrent_test", name))
				if err != nil {
					errs <- fmt.Errorf("%s: select: %w", name, err)
					return
				}
				if len(rows) != 1 {
					errs <- fmt.Errorf("%s: expected 1 row, got %d", name, len(rows))
					return
				}
				if !rows[0][1].Equal(db.Text(name)) {
					errs <- fmt.Errorf("%s: expected own row, got %v", name, rows[0][1])
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Error(err)
		}
		if n := count(t, ctx, g, "concurrent_test"); n != workers {
			t.Errorf("expected %d rows, got %d", workers, n)
		}
	}
}
