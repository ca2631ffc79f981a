package parser

import (
	"encoding/csv"
	"io"
	"iter"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/penwyp/usage-stats/internal/core/model"
	"github.com/penwyp/usage-stats/internal/util"
)

// Header names of an activity export.
const (
	ColumnPromptTokens     = "tokens_prompt"
	ColumnCompletionTokens = "tokens_completion"
	ColumnCancelled        = "cancelled"
	ColumnAppName          = "app_name"
	ColumnModel            = "model_permaslug"
	ColumnCost             = "cost_total"
)

// notCancelled is the only value of the cancelled column that keeps a row.
const notCancelled = "false"

var requiredColumns = []string{
	ColumnPromptTokens,
	ColumnCompletionTokens,
	ColumnCancelled,
	ColumnAppName,
	ColumnModel,
	ColumnCost,
}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Parser reads activity exports and yields the rows that describe a
// completed request.
type Parser struct {
	rows     int
	accepted int
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Rows returns the number of data rows read so far.
func (p *Parser) Rows() int {
	return p.rows
}

// Skipped returns the number of data rows that were filtered out.
func (p *Parser) Skipped() int {
	return p.rows - p.accepted
}

// ParseFile opens path and passes every accepted record to visit. The file is
// closed before ParseFile returns.
func (p *Parser) ParseFile(path string, visit func(model.UsageRecord)) error {
	log := util.Log().With(util.Field{Key: "path", Value: path})
	log.Debug("Start parsing file")

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for record, err := range p.Records(file) {
		if err != nil {
			return errors.Wrapf(err, "failed to parse %s", path)
		}
		visit(record)
	}

	if skipped := p.Skipped(); skipped > 0 {
		log.Warn("Skipped rows without completed token usage",
			util.Field{Key: "skipped", Value: skipped})
	}
	log.Debug("Finished parsing file",
		util.Field{Key: "rows", Value: p.rows},
		util.Field{Key: "accepted", Value: p.accepted})
	return nil
}

// Records returns a lazy sequence over the accepted rows of r. Rows that are
// cancelled or lack positive token counts are dropped without an error; a
// malformed file yields a single error and ends the sequence.
func (p *Parser) Records(r io.Reader) iter.Seq2[model.UsageRecord, error] {
	return func(yield func(model.UsageRecord, error) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.ReuseRecord = true

		header, err := reader.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(model.UsageRecord{}, errors.Wrap(err, "failed to read header"))
			return
		}

		cols, err := locateColumns(header)
		if err != nil {
			yield(model.UsageRecord{}, err)
			return
		}

		for {
			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(model.UsageRecord{}, errors.Wrap(err, "failed to read row"))
				return
			}
			p.rows++

			record, ok := cols.record(row)
			if !ok {
				continue
			}
			p.accepted++
			if !yield(record, nil) {
				return
			}
		}
	}
}

type columns map[string]int

func locateColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		// A repeated name resolves to its last occurrence.
		cols[name] = i
	}

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			util.LogWarn("Export header is missing a required column",
				util.Field{Key: "column", Value: name})
			return nil, errors.Wrapf(ErrMissingColumn, "header has no %q column", name)
		}
	}
	return cols, nil
}

func (c columns) field(row []string, name string) string {
	i := c[name]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func (c columns) record(row []string) (model.UsageRecord, bool) {
	if c.field(row, ColumnCancelled) != notCancelled {
		return model.UsageRecord{}, false
	}

	prompt, ok := parseTokens(c.field(row, ColumnPromptTokens))
	if !ok {
		return model.UsageRecord{}, false
	}
	completion, ok := parseTokens(c.field(row, ColumnCompletionTokens))
	if !ok {
		return model.UsageRecord{}, false
	}

	record := model.UsageRecord{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		AppName:          c.field(row, ColumnAppName),
		Model:            c.field(row, ColumnModel),
		Cost:             parseCost(c.field(row, ColumnCost)),
	}
	return record, record.Valid()
}

func parseTokens(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func parseCost(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	cost, err := strconv.ParseFloat(s, 64)
	if err != nil || cost < 0 || math.IsNaN(cost) || math.IsInf(cost, 0) {
		return 0
	}
	return cost
}
