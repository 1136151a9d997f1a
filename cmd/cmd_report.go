// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/osintkit/photoloc/analysis"
	"github.com/osintkit/photoloc/server"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <image_id>",
	Short: "Print the Markdown report for a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		repo, db, err := openRepository(dbPath)
		if err != nil {
			return err
		}

		if repo == nil {
			return errors.New("no database configured - pass --db or set PHOTOLOC_DB")
		}

		defer db.Close()

		result, err := repo.GetResult(args[0])
		if errors.Is(err, server.ErrAnalysisNotFound) {
			return fmt.Errorf("no analysis stored for %q", args[0])
		}

		if err != nil {
			return err
		}

		return analysis.WriteReport(os.Stdout, *result)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
