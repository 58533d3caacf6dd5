package auditlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mariocromia/centroservice/internal/domain"
)

// Writer appends accepted submissions to a durable, append-only log split by
// calendar month. Entries are never mutated or deleted by this system.
type Writer struct {
	mu  sync.Mutex
	dir string
}

// NewWriter creates a writer rooted at dir. The directory is created on the
// first append.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Append writes one `<timestamp> - <json>` line to the submission month's
// file. The lock is scoped to the single append so concurrent submissions
// never interleave lines; different months never contend in practice.
func (w *Writer) Append(sub *domain.ContactSubmission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	line := fmt.Sprintf("%s - %s\n", sub.SubmittedAt.Format(time.RFC3339), payload)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	path := w.pathFor(sub.SubmittedAt)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (w *Writer) pathFor(t time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("contacts_%s.log", t.Format("2006-01")))
}
