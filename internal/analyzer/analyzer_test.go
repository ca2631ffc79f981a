package analyzer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/usage-stats/internal/config"
)

const csvHeader = "id,tokens_prompt,tokens_completion,cancelled,app_name,model_permaslug,cost_total\n"

func writeCSV(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activity.csv")
	content := csvHeader + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, path string, cfg config.Config) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := New(&Config{InputPath: path, Report: cfg, Out: &out}).Run()
	return out.String(), err
}

func TestRunTextReport(t *testing.T) {
	path := writeCSV(t,
		"1,2000,100,false,Aproject,openai/gpt-4o,0.01",
		"2,3000,200,false,Aproject,openai/gpt-4o,0.02",
		"3,7000,600,false,Aproject,anthropic/claude,0.03",
		"4,0,50,false,Aproject,openai/gpt-4o,0.5",
		"5,999,999,true,Aproject,openai/gpt-4o,0.5",
	)

	out, err := run(t, path, config.Default())

	require.NoError(t, err)
	assert.Contains(t, out, "📊 Analyzed 3 valid API requests")
	assert.Contains(t, out, "Max:     7,000")
	assert.Contains(t, out, "ESTIMATED_INPUT_TOKENS = 4800")
	assert.Contains(t, out, "Anonymous users (10/day): $0.200000/day, $6.0000/month")
	// The filtered rows must not leak into any statistic
	assert.NotContains(t, out, "$0.5")
	assert.NotContains(t, out, "999")
}

func TestRunJSONReport(t *testing.T) {
	path := writeCSV(t, "1,100,10,false,App,m,0")
	cfg := config.Default()
	cfg.Output = config.OutputJSON

	out, err := run(t, path, cfg)

	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, sonic.UnmarshalString(out, &decoded))
	assert.EqualValues(t, 1, decoded["requests"])
	assert.NotContains(t, decoded, "target")
}

func TestRunNoData(t *testing.T) {
	path := writeCSV(t,
		"1,0,50,false,A,m,0",
		"2,10,10,true,A,m,0",
	)

	out, err := run(t, path, config.Default())

	assert.True(t, errors.Is(err, ErrNoData))
	assert.Empty(t, out)
}

func TestRunHeaderOnly(t *testing.T) {
	out, err := run(t, writeCSV(t), config.Default())

	assert.True(t, errors.Is(err, ErrNoData))
	assert.Empty(t, out)
}

func TestRunFileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	out, err := run(t, path, config.Default())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.Contains(t, err.Error(), path)
	assert.Empty(t, out)
}

func TestRunMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("just,a,header\n1,2,3\n"), 0644))

	out, err := run(t, path, config.Default())

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrFileNotFound))
	assert.False(t, errors.Is(err, ErrNoData))
	assert.Empty(t, out)
}

func TestFileNotFoundError(t *testing.T) {
	err := &FileNotFoundError{Path: "/tmp/x.csv"}

	assert.Equal(t, "Could not find file /tmp/x.csv", err.Error())
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.False(t, errors.Is(err, ErrNoData))
}
