package auditlog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mariocromia/centroservice/internal/auditlog"
	"github.com/mariocromia/centroservice/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission(at time.Time) *domain.ContactSubmission {
	return &domain.ContactSubmission{
		Name:        "João Pedro",
		Phone:       "(21) 96598-2113",
		Email:       "joao@example.com",
		Service:     domain.ServiceHidraulica,
		Message:     "Vazamento no banheiro.",
		SubmittedAt: at,
		SourceIP:    "203.0.113.5",
		UserAgent:   "Mozilla/5.0",
	}
}

func TestAppend(t *testing.T) {
	t.Run("creates the directory and month-keyed file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")
		w := auditlog.NewWriter(dir)

		at := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
		require.NoError(t, w.Append(testSubmission(at)))

		data, err := os.ReadFile(filepath.Join(dir, "contacts_2026-09.log"))
		require.NoError(t, err)

		line := strings.TrimSuffix(string(data), "\n")
		prefix := "2026-09-01T10:00:00Z - "
		require.True(t, strings.HasPrefix(line, prefix), "line %q", line)

		var entry domain.ContactSubmission
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, prefix)), &entry))
		assert.Equal(t, "João Pedro", entry.Name)
		assert.Equal(t, domain.ServiceHidraulica, entry.Service)
	})

	t.Run("re-running the same submission appends two lines", func(t *testing.T) {
		dir := t.TempDir()
		w := auditlog.NewWriter(dir)

		at := time.Date(2026, 9, 2, 8, 30, 0, 0, time.UTC)
		sub := testSubmission(at)
		require.NoError(t, w.Append(sub))
		require.NoError(t, w.Append(sub))

		data, err := os.ReadFile(filepath.Join(dir, "contacts_2026-09.log"))
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"), 2)
	})

	t.Run("different months go to different files", func(t *testing.T) {
		dir := t.TempDir()
		w := auditlog.NewWriter(dir)

		require.NoError(t, w.Append(testSubmission(time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC))))
		require.NoError(t, w.Append(testSubmission(time.Date(2026, 9, 1, 0, 1, 0, 0, time.UTC))))

		_, err := os.Stat(filepath.Join(dir, "contacts_2026-08.log"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "contacts_2026-09.log"))
		assert.NoError(t, err)
	})

	t.Run("concurrent appends never interleave", func(t *testing.T) {
		dir := t.TempDir()
		w := auditlog.NewWriter(dir)
		at := time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC)

		done := make(chan struct{})
		for i := 0; i < 10; i++ {
			go func() {
				defer func() { done <- struct{}{} }()
				_ = w.Append(testSubmission(at))
			}()
		}
		for i := 0; i < 10; i++ {
			<-done
		}

		data, err := os.ReadFile(filepath.Join(dir, "contacts_2026-09.log"))
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		require.Len(t, lines, 10)
		for _, line := range lines {
			_, jsonPart, found := strings.Cut(line, " - ")
			require.True(t, found)
			var entry domain.ContactSubmission
			assert.NoError(t, json.Unmarshal([]byte(jsonPart), &entry))
		}
	})
}
