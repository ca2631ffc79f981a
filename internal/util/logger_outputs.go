package util

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

// WriterOutput writes log entries to an io.Writer, usually stderr
type WriterOutput struct {
	writer io.Writer
	format LogFormat
	mu     sync.Mutex
}

// NewWriterOutput creates a new writer output
func NewWriterOutput(writer io.Writer, format LogFormat) Output {
	return &WriterOutput{
		writer: writer,
		format: format,
	}
}

// Write writes a log entry to the underlying writer
func (o *WriterOutput) Write(entry LogEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	line, err := renderEntry(entry, o.format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.writer, line)
	return err
}

func renderEntry(entry LogEntry, format LogFormat) (string, error) {
	if format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	timestamp := entry.Timestamp.Format("2006/01/02 15:04:05")
	output := fmt.Sprintf("%s [%s] %s", timestamp, entry.Level, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		// Stable field order keeps text logs diffable
		sort.Strings(keys)
		fieldStrs := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldStrs = append(fieldStrs, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		output += " " + strings.Join(fieldStrs, " ")
	}
	return output, nil
}
