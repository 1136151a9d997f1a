// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the analysis pipeline over HTTP and persists results.
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/osintkit/photoloc/analysis"
	"github.com/osintkit/photoloc/score"
	"github.com/osintkit/photoloc/spatial"
	"github.com/uber/h3-go/v4"
)

// StoredResult mirrors one geolocation_results row: a single piece of
// location evidence persisted for an image.
type StoredResult struct {
	ID             int            `json:"id"`
	ImageID        string         `json:"image_id"`
	Method         string         `json:"method"`
	SourceAPI      string         `json:"source_api"`
	Point          *spatial.Point `json:"point,omitempty"`
	AccuracyMeters int            `json:"accuracy_meters"`
	Confidence     float64        `json:"confidence"`
	Details        string         `json:"details,omitempty"` // raw JSON payload
	CreatedAt      time.Time      `json:"created_at"`
	H3Res4         int64          `json:"-"`
	H3Res6         int64          `json:"-"`
	H3Res8         int64          `json:"-"`
}

// computeH3 indexes the result's point at the resolutions the repository
// queries on. A point-less result carries zero cells.
func (r *StoredResult) computeH3() error {
	r.H3Res4, r.H3Res6, r.H3Res8 = 0, 0, 0

	if r.Point == nil {
		return nil
	}

	latLng := h3.NewLatLng(r.Point.Lat, r.Point.Lng)

	for _, res := range []int{4, 6, 8} {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 4:
			r.H3Res4 = int64(cell)
		case 6:
			r.H3Res6 = int64(cell)
		case 8:
			r.H3Res8 = int64(cell)
		}
	}

	return nil
}

// StoredAnalysis is the per-image summary row.
type StoredAnalysis struct {
	ImageID           string    `json:"image_id"`
	OverallConfidence float64   `json:"overall_confidence"`
	Quality           string    `json:"quality"`
	EvidenceCount     int       `json:"evidence_count"`
	AnalyzedAt        time.Time `json:"analyzed_at"`
}

// ErrAnalysisNotFound is returned when no analysis exists for an image.
var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisRepository persists analyses and their evidence rows.
type AnalysisRepository interface {
	// CreateSchema creates the analyses and geolocation_results tables.
	CreateSchema() error

	// SaveAnalysis replaces the stored analysis for result's image.
	SaveAnalysis(result analysis.Result) error

	// GetAnalysis returns the summary row for an image.
	GetAnalysis(imageID string) (*StoredAnalysis, error)

	// GetResult returns the full analysis result for an image.
	GetResult(imageID string) (*analysis.Result, error)

	// ListResults returns the evidence rows for an image.
	ListResults(imageID string) ([]*StoredResult, error)

	// CountAnalyses returns the number of stored analyses.
	CountAnalyses() (int, error)

	// DB returns the underlying database connection.
	DB() *sql.DB
}

type sqlAnalysisRepository struct {
	db *sql.DB
}

// NewAnalysisRepository creates a DuckDB-backed repository.
func NewAnalysisRepository(db *sql.DB) AnalysisRepository {
	return &sqlAnalysisRepository{db: db}
}

func (r *sqlAnalysisRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlAnalysisRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	if _, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`); err != nil {
		return err
	}

	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			image_id VARCHAR PRIMARY KEY,
			overall_confidence DOUBLE NOT NULL,
			quality VARCHAR NOT NULL,
			evidence_count INTEGER NOT NULL,
			result_json TEXT NOT NULL,
			analyzed_at TIMESTAMP NOT NULL
		);

		CREATE SEQUENCE IF NOT EXISTS geolocation_results_seq START 1;

		CREATE TABLE IF NOT EXISTS geolocation_results (
			id INTEGER PRIMARY KEY DEFAULT nextval('geolocation_results_seq'),
			image_id VARCHAR NOT NULL,
			method VARCHAR NOT NULL,
			source_api VARCHAR NOT NULL,
			point POINT_2D,
			accuracy_meters INTEGER,
			confidence DOUBLE NOT NULL,
			details TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res4 UBIGINT,
			h3_res6 UBIGINT,
			h3_res8 UBIGINT
		);
	`)

	return err
}

func (r *sqlAnalysisRepository) SaveAnalysis(result analysis.Result) error {
	if result.ImageID == "" {
		return errors.New("image id can't be empty")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback() }()

	// Re-analysis replaces the previous rows for the image.
	if _, err := tx.Exec(`DELETE FROM analyses WHERE image_id = ?`, result.ImageID); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM geolocation_results WHERE image_id = ?`, result.ImageID); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO analyses(image_id, overall_confidence, quality, evidence_count, result_json, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		result.ImageID,
		result.Overall,
		result.Quality.Label,
		len(result.Evidence),
		string(resultJSON),
		result.AnalyzedAt,
	)
	if err != nil {
		return err
	}

	for _, row := range resultRows(result) {
		if err := insertResult(tx, row); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// resultRows flattens an analysis result into persistable evidence rows: one
// per candidate (with matched clues as details) and one per non-candidate
// evidence item.
func resultRows(result analysis.Result) []*StoredResult {
	var rows []*StoredResult

	for _, c := range result.Candidates {
		point := c.Point
		details, _ := json.Marshal(c)

		rows = append(rows, &StoredResult{
			ImageID:        result.ImageID,
			Method:         score.MethodLocationIntelligence,
			SourceAPI:      c.Source,
			Point:          &point,
			AccuracyMeters: c.AccuracyMeters,
			Confidence:     c.Confidence,
			Details:        string(details),
			CreatedAt:      result.AnalyzedAt,
		})
	}

	for _, e := range result.Evidence {
		if e.Method == score.MethodLocationIntelligence {
			continue // candidates are persisted with full detail above
		}

		sourceAPI := "vision_analysis"
		if e.Method == score.MethodEXIFGPS {
			sourceAPI = "exif"
		}

		rows = append(rows, &StoredResult{
			ImageID:    result.ImageID,
			Method:     e.Method,
			SourceAPI:  sourceAPI,
			Point:      e.Point,
			Confidence: e.Confidence,
			CreatedAt:  result.AnalyzedAt,
		})
	}

	return rows
}

func insertResult(tx *sql.Tx, row *StoredResult) error {
	if err := row.computeH3(); err != nil {
		return err
	}

	// POINT_2D has no driver-level placeholder; it is built with ST_Point.
	pointExpr := "NULL"

	var args []any

	if row.Point != nil {
		pointExpr = "ST_Point(?, ?)"
		args = append(args, row.Point.Lng, row.Point.Lat)
	}

	args = append(args,
		row.ImageID,
		row.Method,
		row.SourceAPI,
		row.AccuracyMeters,
		row.Confidence,
		row.Details,
		row.CreatedAt,
		row.H3Res4,
		row.H3Res6,
		row.H3Res8,
	)

	query := `
		INSERT INTO geolocation_results(
			point, image_id, method, source_api, accuracy_meters,
			confidence, details, created_at, h3_res4, h3_res6, h3_res8
		) VALUES (` + pointExpr + `, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query, args...)

	return err
}

func (r *sqlAnalysisRepository) GetAnalysis(imageID string) (*StoredAnalysis, error) {
	row := r.db.QueryRow(`
		SELECT image_id, overall_confidence, quality, evidence_count, analyzed_at
		FROM analyses WHERE image_id = ?
	`, imageID)

	var a StoredAnalysis

	err := row.Scan(&a.ImageID, &a.OverallConfidence, &a.Quality, &a.EvidenceCount, &a.AnalyzedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}

	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *sqlAnalysisRepository) GetResult(imageID string) (*analysis.Result, error) {
	row := r.db.QueryRow(`SELECT result_json FROM analyses WHERE image_id = ?`, imageID)

	var raw string

	err := row.Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}

	if err != nil {
		return nil, err
	}

	var result analysis.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("unmarshaling stored result: %w", err)
	}

	return &result, nil
}

func (r *sqlAnalysisRepository) ListResults(imageID string) ([]*StoredResult, error) {
	rows, err := r.db.Query(`
		SELECT id, image_id, method, source_api, point, accuracy_meters,
		       confidence, details, created_at
		FROM geolocation_results
		WHERE image_id = ?
		ORDER BY confidence DESC, id
	`, imageID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var results []*StoredResult

	for rows.Next() {
		var (
			res      StoredResult
			pointRaw any
			details  sql.NullString
		)

		err := rows.Scan(
			&res.ID,
			&res.ImageID,
			&res.Method,
			&res.SourceAPI,
			&pointRaw,
			&res.AccuracyMeters,
			&res.Confidence,
			&details,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if pointRaw != nil {
			var p spatial.Point
			if err := p.Scan(pointRaw); err != nil {
				return nil, err
			}

			res.Point = &p
		}

		res.Details = details.String

		results = append(results, &res)
	}

	return results, rows.Err()
}

func (r *sqlAnalysisRepository) CountAnalyses() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&count)

	return count, err
}
