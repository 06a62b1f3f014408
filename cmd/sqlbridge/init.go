package main

import (
	"context"
	"fmt"
)

type InitCommand struct {
}

func (c *InitCommand) Run(ctx context.Context, g GlobalFlags) error {
	_, closer, err := g.Gateway(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer closer()

	if g.Type == "sqlite" {
		fmt.Println(g.Config().StorePath())
	}
	return nil
}
