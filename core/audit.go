package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditSeverity grades audit events.
type AuditSeverity string

const (
	// SeverityInfo for normal operations.
	SeverityInfo AuditSeverity = "info"

	// SeverityWarning for suspicious inputs (rejected plans, oversized
	// uploads).
	SeverityWarning AuditSeverity = "warning"

	// SeverityError for processing failures.
	SeverityError AuditSeverity = "error"
)

// AuditEvent is one entry in the anonymization audit trail.
type AuditEvent struct {
	RequestID string        `json:"request_id"`
	Timestamp string        `json:"timestamp"`
	EventType string        `json:"event_type"` // e.g. "upload", "analyze", "anonymize"
	Severity  AuditSeverity `json:"severity"`

	Filename string            `json:"filename,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AuditLogger appends audit events to a JSONL file, optionally mirroring
// them to stdout. Writes are serialized; the file rotates once it grows
// past rotationSize bytes.
type AuditLogger struct {
	mu           sync.Mutex
	path         string
	writer       io.Writer
	file         *os.File
	currentSize  int64
	rotationSize int64
	console      bool
}

// NewAuditLogger opens (or creates) the JSONL audit log at path.
func NewAuditLogger(path string, console bool) (*AuditLogger, error) {
	l := &AuditLogger{
		path:         path,
		rotationSize: 100 * 1024 * 1024,
		console:      console,
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *AuditLogger) open() error {
	if dir := filepath.Dir(l.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat audit log: %w", err)
	}

	l.file = f
	l.currentSize = info.Size()
	if l.console {
		l.writer = io.MultiWriter(f, os.Stdout)
	} else {
		l.writer = f
	}
	return nil
}

// maybeRotate renames the current log aside and reopens a fresh one when
// the size threshold is crossed.
func (l *AuditLogger) maybeRotate() error {
	if l.currentSize < l.rotationSize {
		return nil
	}
	l.file.Close()
	rotated := fmt.Sprintf("%s.%s", l.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(l.path, rotated); err != nil {
		return fmt.Errorf("failed to rotate audit log: %w", err)
	}
	return l.open()
}

// Log appends an event, filling in the timestamp and a request ID when
// absent.
func (l *AuditLogger) Log(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.maybeRotate(); err != nil {
		return err
	}

	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if event.RequestID == "" {
		event.RequestID = uuid.NewString()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}

	entry, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	n, err := fmt.Fprintln(l.writer, string(entry))
	if err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	l.currentSize += int64(n)
	return nil
}

// Close releases the underlying file.
func (l *AuditLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
