package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/a-h/sqlbridge/db"
)

type BatchCommand struct {
}

func (c *BatchCommand) Run(ctx context.Context, g GlobalFlags) error {
	var items []db.BatchItem
	if err := json.NewDecoder(os.Stdin).Decode(&items); err != nil {
		return fmt.Errorf("failed to decode batch: %w", err)
	}

	gw, closer, err := g.Gateway(ctx)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	defer closer()

	outputs, err := gw.ExecuteBatch(ctx, items)
	if err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(outputs)
}
