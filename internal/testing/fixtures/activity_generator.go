package fixtures

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
)

// ActivityHeader is the column layout of an OpenRouter activity export.
var ActivityHeader = []string{
	"generation_id", "created_at", "cost_total", "byok_usage_inference",
	"tokens_prompt", "tokens_completion", "tokens_reasoning", "tokens_cached",
	"model_permaslug", "provider_name", "app_name", "finish_reason", "cancelled",
}

// ActivityRow is a single row of an activity export. Empty strings are
// written as empty cells so invalid rows can be expressed.
type ActivityRow struct {
	GenerationID     string
	CreatedAt        string
	Cost             string
	PromptTokens     string
	CompletionTokens string
	Model            string
	Provider         string
	AppName          string
	FinishReason     string
	Cancelled        string
}

// Completed returns a finished, non-cancelled row.
func Completed(app, model string, prompt, completion int, cost float64) ActivityRow {
	return ActivityRow{
		CreatedAt:        "2025-06-01 12:00:00.000",
		Cost:             strconv.FormatFloat(cost, 'f', -1, 64),
		PromptTokens:     strconv.Itoa(prompt),
		CompletionTokens: strconv.Itoa(completion),
		Model:            model,
		Provider:         "OpenAI",
		AppName:          app,
		FinishReason:     "stop",
		Cancelled:        "false",
	}
}

// AsCancelled returns a copy of r marked as cancelled.
func (r ActivityRow) AsCancelled() ActivityRow {
	r.Cancelled = "true"
	return r
}

func (r ActivityRow) record(i int) []string {
	id := r.GenerationID
	if id == "" {
		id = "gen-" + strconv.Itoa(i+1)
	}
	return []string{
		id, r.CreatedAt, r.Cost, "0",
		r.PromptTokens, r.CompletionTokens, "0", "0",
		r.Model, r.Provider, r.AppName, r.FinishReason, r.Cancelled,
	}
}

// ActivityGenerator writes activity exports into a directory.
type ActivityGenerator struct {
	baseDir string
}

// NewActivityGenerator creates a generator writing below baseDir.
func NewActivityGenerator(baseDir string) *ActivityGenerator {
	return &ActivityGenerator{baseDir: baseDir}
}

// Write creates name with the header and rows and returns its path.
func (g *ActivityGenerator) Write(name string, rows ...ActivityRow) (string, error) {
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(g.baseDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(ActivityHeader); err != nil {
		return "", err
	}
	for i, row := range rows {
		if err := w.Write(row.record(i)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}
