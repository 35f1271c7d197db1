// Package auditlog appends one line per run to a local file for historical
// auditing outside the process.
package auditlog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Field is one key:value pair on an audit line.
type Field struct {
	Key   string
	Value string
}

// Logger writes append-only run records. A nil *Logger is valid and
// records nothing, which is how a disabled audit log is represented.
type Logger struct {
	file *os.File
	out  *log.Logger
}

// Open creates the log directory if needed and opens the file for append.
func Open(path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Logger{file: f, out: log.New(f, "", 0)}, nil
}

// Record appends one comma-separated line: timestamp, run id, then fields.
func (l *Logger) Record(runID string, fields ...Field) {
	if l == nil {
		return
	}
	parts := make([]string, 0, len(fields)+2)
	parts = append(parts, time.Now().Format(timestampLayout), "run:"+runID)
	for _, f := range fields {
		parts = append(parts, f.Key+":"+f.Value)
	}
	l.out.Println(strings.Join(parts, ","))
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
