// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/mattn/go-isatty"
	"github.com/osintkit/photoloc/analysis"
	"github.com/osintkit/photoloc/server"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	dbPath       string
	reportsDir   string
	analyzeProcs int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dir>",
	Short: "Analyze a directory of scene analysis JSON files",
	Long: `
Each *.json file in the directory holds the scene analysis for one photo
(signage, landmarks, infrastructure sections plus optional EXIF GPS and
indicators). The image id defaults to the file name.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := os.ReadDir(args[0])
		if err != nil {
			return fmt.Errorf("reading directory: %w", err)
		}

		var files []string

		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				files = append(files, filepath.Join(args[0], e.Name()))
			}
		}

		if len(files) == 0 {
			return fmt.Errorf("no .json files found in %s", args[0])
		}

		if reportsDir != "" {
			if err := os.MkdirAll(reportsDir, 0o750); err != nil {
				return fmt.Errorf("creating reports directory: %w", err)
			}
		}

		repo, db, err := openRepository(dbPath)
		if err != nil {
			return err
		}

		if db != nil {
			defer db.Close()
		}

		geocoder := server.GeocoderFromEnv(cmd.Context())
		pipeline := analysis.NewPipeline(geocoder)

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(files),
				progressbar.OptionSetDescription("Analyzing"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		maxProcs := analyzeProcs
		if maxProcs <= 0 {
			maxProcs = 4
		}

		var wg sync.WaitGroup

		semaphore := make(chan struct{}, maxProcs)
		errChan := make(chan error, len(files))

		var (
			mu       sync.Mutex
			analyzed int
			located  int
		)

		for _, file := range files {
			wg.Add(1)

			go func(file string) {
				defer wg.Done()
				semaphore <- struct{}{}

				defer func() { <-semaphore }()

				result, err := analyzeFile(cmd, pipeline, repo, file)
				if err != nil {
					errChan <- fmt.Errorf("analyzing %s - %w", file, err)
				} else {
					mu.Lock()
					analyzed++
					if result.Estimate != nil {
						located++
					}
					mu.Unlock()
				}

				if bar == nil {
					log.Printf("Analyzing %s", file)
				} else {
					if err := bar.Add(1); err != nil {
						errChan <- fmt.Errorf("updating progress bar for %s: %w", file, err)
					}
				}
			}(file)
		}

		wg.Wait()
		close(errChan)

		for err := range errChan {
			log.Printf("Analysis failed - %s", err)
		}

		log.Printf("Analysis complete - %d of %d images analyzed, %d with a location estimate",
			analyzed, len(files), located)

		return nil
	},
}

func analyzeFile(cmd *cobra.Command, pipeline *analysis.Pipeline, repo server.AnalysisRepository, file string) (*analysis.Result, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var req analysis.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing scene analysis: %w", err)
	}

	if req.ImageID == "" {
		req.ImageID = strings.TrimSuffix(filepath.Base(file), ".json")
	}

	result := pipeline.Analyze(cmd.Context(), req)

	if repo != nil {
		if err := repo.SaveAnalysis(result); err != nil {
			return nil, fmt.Errorf("saving analysis: %w", err)
		}
	}

	if reportsDir != "" {
		report, err := analysis.Report(result)
		if err != nil {
			return nil, fmt.Errorf("rendering report: %w", err)
		}

		out := filepath.Join(reportsDir, result.ImageID+".md")
		if err := os.WriteFile(out, []byte(report), 0o644); err != nil {
			return nil, fmt.Errorf("writing report: %w", err)
		}
	}

	return &result, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.PersistentFlags().StringVar(
		&dbPath,
		"db",
		"",
		"DuckDB database file. Defaults to PHOTOLOC_DB; empty disables persistence",
	)
	analyzeCmd.PersistentFlags().StringVar(
		&reportsDir,
		"reports",
		"",
		"Directory to write per-image Markdown reports to",
	)
	analyzeCmd.PersistentFlags().IntVar(
		&analyzeProcs,
		"max-procs",
		0,
		"Max number of concurrent analyses. Geocoding remains paced at one request per second",
	)
}
