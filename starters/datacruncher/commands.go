// Package datacruncher is the CSV analysis starter pack: column statistics,
// LLM insights over stored results and CSV report export.
package datacruncher

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huitzo/packkit/pkg/huitzo"
)

const storagePrefix = "analysis:"

type analyzeFileArgs struct {
	FilePath   string `json:"file_path"`
	ColumnName string `json:"column_name"`
}

func (a *analyzeFileArgs) Validate() error {
	if a.FilePath == "" {
		return &huitzo.ValidationError{Field: "file_path", Message: "file_path is required"}
	}
	if len(a.FilePath) > 500 {
		return &huitzo.ValidationError{Field: "file_path", Message: "file_path exceeds 500 characters"}
	}
	if a.ColumnName == "" {
		return &huitzo.ValidationError{Field: "column_name", Message: "column_name is required"}
	}
	if len(a.ColumnName) > 100 {
		return &huitzo.ValidationError{Field: "column_name", Message: "column_name exceeds 100 characters"}
	}
	return nil
}

type analysisIDArgs struct {
	AnalysisID string `json:"analysis_id"`
}

func (a *analysisIDArgs) Validate() error {
	if a.AnalysisID == "" {
		return &huitzo.ValidationError{Field: "analysis_id", Message: "analysis_id is required"}
	}
	return nil
}

type exportReportArgs struct {
	AnalysisID string `json:"analysis_id"`
	OutputPath string `json:"output_path"`
}

func (a *exportReportArgs) Validate() error {
	if a.AnalysisID == "" {
		return &huitzo.ValidationError{Field: "analysis_id", Message: "analysis_id is required"}
	}
	if a.OutputPath == "" {
		return &huitzo.ValidationError{Field: "output_path", Message: "output_path is required"}
	}
	return nil
}

// Commands returns the data namespace.
func Commands() []*huitzo.Command {
	return []*huitzo.Command{
		{
			Name:        "analyze-file",
			Namespace:   "data",
			Description: "Compute column statistics over a CSV file",
			Timeout:     60 * time.Second,
			Retries:     3,
			Queue:       "medium",
			Handler:     analyzeFile,
		},
		{
			Name:        "ai-insights",
			Namespace:   "data",
			Description: "LLM insights over a stored analysis",
			Timeout:     60 * time.Second,
			Retries:     3,
			Queue:       "medium",
			Handler:     aiInsights,
		},
		{
			Name:        "export-report",
			Namespace:   "data",
			Description: "Export a stored analysis as a CSV report",
			Timeout:     60 * time.Second,
			Retries:     3,
			Queue:       "medium",
			Handler:     exportReport,
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// computeStatistics mirrors the platform docs: every metric rounded to two
// decimals, stdev is the sample deviation and 0 for a single value.
func computeStatistics(values []float64) map[string]any {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var median float64
	n := len(sorted)
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	stdev := 0.0
	if len(values) > 1 {
		var ss float64
		for _, v := range values {
			d := v - mean
			ss += d * d
		}
		stdev = math.Sqrt(ss / float64(len(values)-1))
	}

	return map[string]any{
		"count":  len(values),
		"sum":    round2(sum),
		"mean":   round2(mean),
		"median": round2(median),
		"min":    round2(sorted[0]),
		"max":    round2(sorted[n-1]),
		"stdev":  round2(stdev),
	}
}

func parseNumericColumn(rows []map[string]string, column string) []float64 {
	var values []float64
	for _, row := range rows {
		raw := strings.TrimSpace(row[column])
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	return values
}

func analyzeFile(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args analyzeFileArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	rows, err := hctx.Files.ReadCSV(ctx, args.FilePath)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]any{
			"error":   "empty_file",
			"message": fmt.Sprintf("No data found in %s", args.FilePath),
		}, nil
	}

	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	if _, ok := rows[0][args.ColumnName]; !ok {
		return map[string]any{
			"error":   "column_not_found",
			"message": fmt.Sprintf("Column %q not found. Available: %s", args.ColumnName, strings.Join(columns, ", ")),
		}, nil
	}

	values := parseNumericColumn(rows, args.ColumnName)
	if len(values) == 0 {
		return map[string]any{
			"error":   "no_numeric_data",
			"message": fmt.Sprintf("No numeric values found in column %q", args.ColumnName),
		}, nil
	}

	stats := computeStatistics(values)

	analysisID := "analysis-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	analysis := map[string]any{
		"analysis_id":          analysisID,
		"file_path":            args.FilePath,
		"column_name":          args.ColumnName,
		"row_count":            len(rows),
		"numeric_values_count": len(values),
		"statistics":           stats,
		"columns":              columns,
		"created_at":           time.Now().UTC().Format(time.RFC3339),
	}

	if err := hctx.Storage.Save(ctx, storagePrefix+analysisID, analysis); err != nil {
		return nil, err
	}

	hctx.Logger().Info("data.analyzed",
		"file", args.FilePath, "column", args.ColumnName,
		"values", len(values), "mean", stats["mean"])

	return analysis, nil
}

func aiInsights(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args analysisIDArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	analysis, err := hctx.Storage.Get(ctx, storagePrefix+args.AnalysisID)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return map[string]any{
			"error":   "not_found",
			"message": fmt.Sprintf("Analysis %q not found. Run analyze-file first.", args.AnalysisID),
		}, nil
	}

	stats, _ := analysis["statistics"].(map[string]any)

	prompt := fmt.Sprintf(`Analyze the following data statistics and provide actionable insights.

Data source: %v
Column analyzed: %v
Row count: %v

Statistics:
- Count: %v
- Sum: %v
- Mean: %v
- Median: %v
- Min: %v
- Max: %v
- Std Dev: %v

Respond as JSON:
{"summary": "...", "insights": ["..."], "recommendations": ["..."], "data_quality": "good"}`,
		analysis["file_path"], analysis["column_name"], analysis["row_count"],
		stats["count"], stats["sum"], stats["mean"], stats["median"],
		stats["min"], stats["max"], stats["stdev"])

	resp, err := huitzo.CompleteJSON(ctx, hctx.LLM, huitzo.CompletionRequest{
		Prompt:      prompt,
		System:      "You are a data analyst. Provide clear, actionable insights based on descriptive statistics. Focus on patterns, anomalies, and practical recommendations. Always respond with valid JSON.",
		Temperature: 0.4,
	})
	if err != nil {
		return nil, err
	}

	quality, _ := resp["data_quality"].(string)
	if quality == "" {
		quality = "fair"
	}
	summary, _ := resp["summary"].(string)

	hctx.Logger().Info("data.insights", "analysis_id", args.AnalysisID)

	return map[string]any{
		"analysis_id":        args.AnalysisID,
		"column_name":        analysis["column_name"],
		"statistics":         stats,
		"ai_summary":         summary,
		"ai_insights":        anySlice(resp["insights"]),
		"ai_recommendations": anySlice(resp["recommendations"]),
		"data_quality":       quality,
	}, nil
}

func exportReport(ctx context.Context, hctx *huitzo.Context, raw json.RawMessage) (any, error) {
	var args exportReportArgs
	if err := huitzo.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}

	analysis, err := hctx.Storage.Get(ctx, storagePrefix+args.AnalysisID)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return map[string]any{
			"error":   "not_found",
			"message": fmt.Sprintf("Analysis %q not found. Run analyze-file first.", args.AnalysisID),
		}, nil
	}

	stats, _ := analysis["statistics"].(map[string]any)

	var b strings.Builder
	fmt.Fprintln(&b, "Analysis Report")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Source: %v\n", analysis["file_path"])
	fmt.Fprintf(&b, "Column: %v\n", analysis["column_name"])
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Metric,Value")
	fmt.Fprintf(&b, "Row Count,%v\n", analysis["row_count"])
	fmt.Fprintf(&b, "Numeric Values,%v\n", analysis["numeric_values_count"])
	for _, metric := range []string{"count", "sum", "mean", "median", "min", "max", "stdev"} {
		if v, ok := stats[metric]; ok {
			fmt.Fprintf(&b, "%s,%v\n", titleCase(metric), v)
		}
	}

	written, err := hctx.Files.Write(ctx, args.OutputPath, b.String())
	if err != nil {
		return nil, err
	}

	hctx.Logger().Info("data.exported", "path", written)

	return map[string]any{
		"exported":      true,
		"analysis_id":   args.AnalysisID,
		"output_path":   written,
		"metrics_count": len(stats),
	}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func anySlice(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{}
}
