// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/osintkit/photoloc/analysis"
	"github.com/osintkit/photoloc/server"
	"github.com/spf13/cobra"
)

var serveAddr string

// openRepository opens (or creates) the DuckDB database and ensures the
// schema exists. An empty path disables persistence.
func openRepository(dbPath string) (server.AnalysisRepository, *sql.DB, error) {
	if dbPath == "" {
		dbPath = os.Getenv("PHOTOLOC_DB")
	}

	if dbPath == "" {
		return nil, nil, nil
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := server.NewAnalysisRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return repo, db, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, db, err := openRepository(dbPath)
		if err != nil {
			return err
		}

		if db != nil {
			defer db.Close()
		}

		addr := serveAddr
		if addr == "" {
			addr = os.Getenv("PHOTOLOC_ADDR")
		}

		if addr == "" {
			addr = "localhost:8080"
		}

		geocoder := server.GeocoderFromEnv(cmd.Context())
		pipeline := analysis.NewPipeline(geocoder)

		fmt.Printf("🗺️  Analysis server starting on %s\n", addr)

		return server.NewServer(pipeline, repo).Run(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().StringVar(
		&serveAddr,
		"addr",
		"",
		"Listen address. Defaults to PHOTOLOC_ADDR or localhost:8080",
	)
}
