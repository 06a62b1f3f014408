package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a-h/sqlbridge/db"
)

type BenchCommand struct {
	Table string `help:"The table to create, populate and drop." default:"sqlbridge_bench"`
	N     int    `short:"n" help:"Number of statements to execute." default:"10000"`
	W     int    `short:"w" help:"Number of workers to use." default:"100"`
}

func (c *BenchCommand) Run(ctx context.Context, g GlobalFlags) error {
	gw, closer, err := g.Gateway(ctx)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	defer closer()

	stmts := gw.Statements()
	setup := []db.BatchItem{
		{Statement: stmts.DropTable(c.Table), Method: "run"},
		{Statement: stmts.CreateTable(c.Table), Method: "run"},
	}
	if _, err = gw.ExecuteBatch(ctx, setup); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	defer func() {
		drop := stmts.DropTable(c.Table)
		if _, err := gw.Execute(context.WithoutCancel(ctx), drop.SQL, drop.Params); err != nil {
			fmt.Printf("failed to drop table: %v\n", err)
		}
	}()

	fmt.Printf("Executing %d statements with %d workers...\n", c.N, c.W)

	var wg sync.WaitGroup

	statements := make(chan db.Statement, c.W)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(statements)
		for i := 0; i < c.N; i++ {
			var s db.Statement
			if i%2 == 0 {
				s = stmts.Insert(c.Table, fmt.Sprintf("bench-%d", i), float64(i)/10, i%4 == 0, []string{"bench"})
			} else {
				s = stmts.Count(c.Table)
			}
			select {
			case statements <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	var errCount int
	var errMu sync.Mutex

	start := time.Now()
	for i := 0; i < c.W; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range statements {
				if _, err := gw.Execute(ctx, s.SQL, s.Params); err != nil {
					errMu.Lock()
					errCount++
					errMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	end := time.Now()

	timeTaken := end.Sub(start)
	opsPerSecond := float64(c.N) / timeTaken.Seconds()
	fmt.Printf("Complete, in %v, %v ops per second, %d errors\n", timeTaken, opsPerSecond, errCount)

	return nil
}
