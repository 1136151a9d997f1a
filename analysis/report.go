// Copyright 2026 The PhotoLoc Authors
// SPDX-License-Identifier: Apache-2.0

package analysis

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// reportTemplate renders a Result as a Markdown investigation report.
var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct":   func(v float64) string { return fmt.Sprintf("%.0f%%", v*100) },
	"coord": func(v float64) string { return fmt.Sprintf("%.6f", v) },
	"join":  strings.Join,
}).Parse(`# Geolocation Analysis Report

**Image:** {{.ImageID}}
**Analyzed:** {{.AnalyzedAt.Format "2006-01-02 15:04:05 UTC"}}
**Evidence quality:** {{.Quality.Label}} ({{pct .Quality.Score}})
**Overall confidence:** {{pct .Overall}}

## Best Location Estimate

{{if .Estimate -}}
- Coordinates: {{coord .Estimate.Point.Lat}}, {{coord .Estimate.Point.Lng}}
- Confidence: {{pct .Estimate.Confidence}}
- Accuracy: ±{{.Estimate.AccuracyMeters}} m
- Methods: {{join .Estimate.Methods ", "}}
- Contributing evidence: {{.Estimate.EvidenceCount}}
{{- else -}}
No coordinate-bearing evidence was found for this image.
{{- end}}

## Evidence ({{len .Evidence}})

| Method | Coordinates | Confidence |
|--------|-------------|------------|
{{- range .Evidence}}
| {{.Method}} | {{if .Point}}{{coord .Point.Lat}}, {{coord .Point.Lng}}{{else}}—{{end}} | {{pct .Confidence}} |
{{- end}}

{{if .Candidates -}}
## Location Candidates

| Address | City | Country | Accuracy | Confidence |
|---------|------|---------|----------|------------|
{{- range .Candidates}}
| {{.Address}} | {{.City}} | {{.Country}} | ±{{.AccuracyMeters}} m | {{pct .Confidence}} |
{{- end}}
{{- end}}

{{if .Clues -}}
## Extracted Clues

| Type | Text | Section | Confidence |
|------|------|---------|------------|
{{- range .Clues}}
| {{.Type}} | {{.Text}} | {{.Source}} | {{pct .Confidence}} |
{{- end}}
{{- end}}
`))

// WriteReport renders the result as Markdown.
func WriteReport(w io.Writer, result Result) error {
	if err := reportTemplate.Execute(w, result); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	return nil
}

// Report returns the Markdown report as a string.
func Report(result Result) (string, error) {
	var sb strings.Builder
	if err := WriteReport(&sb, result); err != nil {
		return "", err
	}

	return sb.String(), nil
}
