package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/a-h/sqlbridge/db"
	"github.com/pterm/pterm"
)

type ExecCommand struct {
	SQL    string `arg:"" help:"The SQL statement to execute." required:""`
	Params string `arg:"" optional:"" help:"The positional parameters, as a JSON array." default:"[]"`
	Format string `help:"The output format." enum:"json,table" default:"json"`
}

func (c *ExecCommand) Run(ctx context.Context, g GlobalFlags) error {
	var params []db.Value
	if err := json.Unmarshal([]byte(c.Params), &params); err != nil {
		return fmt.Errorf("failed to decode params: %w", err)
	}

	gw, closer, err := g.Gateway(ctx)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	defer closer()

	rows, err := gw.Execute(ctx, c.SQL, params)
	if err != nil {
		return fmt.Errorf("failed to execute: %w", err)
	}

	if c.Format == "table" {
		return printTable(rows)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func printTable(rows db.ResultSet) error {
	if len(rows) == 0 {
		pterm.Info.Println("no rows")
		return nil
	}
	data := make(pterm.TableData, len(rows))
	for i, row := range rows {
		data[i] = make([]string, len(row))
		for j, v := range row {
			data[i][j] = v.String()
		}
	}
	return pterm.DefaultTable.WithData(data).Render()
}
