package parser

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/usage-stats/internal/core/model"
	"github.com/penwyp/usage-stats/internal/util"
)

const header = "generation_id,tokens_prompt,tokens_completion,cancelled,app_name,model_permaslug,cost_total\n"

func collect(t *testing.T, p *Parser, input string) ([]model.UsageRecord, error) {
	t.Helper()
	var records []model.UsageRecord
	for record, err := range p.Records(strings.NewReader(input)) {
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

func TestRecordsAcceptsValidRows(t *testing.T) {
	input := header +
		"g1,1200,300,false,Aproject,openai/gpt-4o,0.0042\n" +
		"g2,800,150,false,Other,anthropic/claude-3.5-sonnet,\n"

	p := NewParser()
	records, err := collect(t, p, input)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.UsageRecord{
		PromptTokens:     1200,
		CompletionTokens: 300,
		AppName:          "Aproject",
		Model:            "openai/gpt-4o",
		Cost:             0.0042,
	}, records[0])
	assert.Equal(t, 950, records[1].TotalTokens())
	assert.Zero(t, records[1].Cost, "empty cost maps to zero")
	assert.Equal(t, 2, p.Rows())
	assert.Equal(t, 0, p.Skipped())
}

func TestRecordsFiltersInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"cancelled", "g,100,50,true,A,m,0.1"},
		{"cancelled not literal false", "g,100,50,False,A,m,0.1"},
		{"cancelled empty", "g,100,50,,A,m,0.1"},
		{"zero prompt", "g,0,50,false,A,m,0.1"},
		{"zero completion", "g,100,0,false,A,m,0.1"},
		{"empty prompt", "g,,50,false,A,m,0.1"},
		{"empty completion", "g,100,,false,A,m,0.1"},
		{"non-numeric prompt", "g,abc,50,false,A,m,0.1"},
		{"fractional completion", "g,100,1.5,false,A,m,0.1"},
		{"negative prompt", "g,-10,50,false,A,m,0.1"},
		{"short row", "g,100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser()
			records, err := collect(t, p, header+tt.row+"\n")

			require.NoError(t, err)
			assert.Empty(t, records)
			assert.Equal(t, 1, p.Skipped())
		})
	}
}

func TestRecordsCostFallbacks(t *testing.T) {
	input := header +
		"g1,10,10,false,A,m,not-a-number\n" +
		"g2,10,10,false,A,m, 0.5 \n" +
		"g3,10,10,false,A,m,-1\n" +
		"g4,10,10,false,A,m,NaN\n"

	records, err := collect(t, NewParser(), input)

	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Zero(t, records[0].Cost)
	assert.Equal(t, 0.5, records[1].Cost)
	assert.Zero(t, records[2].Cost)
	assert.Zero(t, records[3].Cost)
}

func TestRecordsColumnOrderAndExtraColumns(t *testing.T) {
	input := "\ufeffcost_total,model_permaslug,app_name,extra,cancelled,tokens_completion,tokens_prompt\n" +
		"0.25,m1,App,x,false,40,60\n"

	records, err := collect(t, NewParser(), input)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 60, records[0].PromptTokens)
	assert.Equal(t, 40, records[0].CompletionTokens)
	assert.Equal(t, "App", records[0].AppName)
	assert.Equal(t, "m1", records[0].Model)
	assert.Equal(t, 0.25, records[0].Cost)
}

func TestRecordsRepeatedColumnUsesLastOccurrence(t *testing.T) {
	input := "tokens_prompt,tokens_completion,cancelled,app_name,model_permaslug,cost_total,cost_total\n" +
		"60,40,false,App,m1,0.10,0.25\n"

	records, err := collect(t, NewParser(), input)

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.25, records[0].Cost)
}

func TestRecordsMissingColumn(t *testing.T) {
	input := "tokens_prompt,tokens_completion,cancelled,app_name,cost_total\n10,10,false,A,0\n"

	_, err := collect(t, NewParser(), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "model_permaslug")
}

func TestRecordsEmptyInput(t *testing.T) {
	records, err := collect(t, NewParser(), "")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordsMalformedCSV(t *testing.T) {
	input := header + "g1,10,10,false,\"unterminated,m,0\n"

	_, err := collect(t, NewParser(), input)

	assert.Error(t, err)
}

func TestRecordsStopsWhenConsumerBreaks(t *testing.T) {
	input := header +
		"g1,10,10,false,A,m,0\n" +
		"g2,10,10,false,A,m,0\n" +
		"g3,10,10,false,A,m,0\n"

	p := NewParser()
	for range p.Records(strings.NewReader(input)) {
		break
	}
	assert.Equal(t, 1, p.Rows())
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.csv")
	input := header +
		"g1,10,20,false,A,m,0.1\n" +
		"g2,0,20,false,A,m,0.1\n"
	require.NoError(t, os.WriteFile(path, []byte(input), 0644))

	var got []model.UsageRecord
	p := NewParser()
	err := p.ParseFile(path, func(r model.UsageRecord) {
		got = append(got, r)
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 30, got[0].TotalTokens())
	assert.Equal(t, 1, p.Skipped())
}

func TestParseFileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	err := NewParser().ParseFile(path, func(model.UsageRecord) {})

	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestParseFileWrapsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))

	err := NewParser().ParseFile(path, func(model.UsageRecord) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.csv")
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestParseFileWarnsAboutSkippedRows(t *testing.T) {
	var buf bytes.Buffer
	util.InitLogger("debug", &buf, util.FormatText)
	defer util.InitLogger("info", nil, util.FormatText)

	path := filepath.Join(t.TempDir(), "activity.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+
		"g1,100,50,false,A,m,0\n"+
		"g2,100,50,true,A,m,0\n"+
		"g3,0,50,false,A,m,0\n"), 0644))

	var count int
	require.NoError(t, NewParser().ParseFile(path, func(model.UsageRecord) { count++ }))

	assert.Equal(t, 1, count)
	assert.Contains(t, buf.String(), "[WARN] Skipped rows without completed token usage")
	assert.Contains(t, buf.String(), "skipped=2")
	assert.Contains(t, buf.String(), "path="+path)
}
