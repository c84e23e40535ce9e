package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/services"
)

// RunSummaryCommand prints the text summary and top symptoms for a local
// export file. The file holds either a bare entry array or {"entries": [...]}.
func RunSummaryCommand(path string, rawWindow string, now time.Time, out io.Writer) error {
	window, err := services.ParseWindow(rawWindow)
	if err != nil {
		return fmt.Errorf("invalid window %q: %w", rawWindow, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	entries, err := decodeExport(raw)
	if err != nil {
		return fmt.Errorf("decode export %s: %w", path, err)
	}

	patient, _ := services.SplitByAuthor(entries)
	fmt.Fprintln(out, services.FormatSummaryAt(window.Apply(patient, now), now))

	ranking := services.TopSymptomsByAvgSeverity(patient, window, services.DefaultTopSymptoms, now)
	if len(ranking) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\nTop symptoms (%s):\n", describeWindow(window))
	for index, symptom := range ranking {
		fmt.Fprintf(out, "%d. %s  avg %.1f/5 (%d entries)\n", index+1, symptom.Type, symptom.AvgSeverity, symptom.Count)
	}
	return nil
}

func decodeExport(raw []byte) ([]models.Entry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty file")
	}

	if trimmed[0] == '[' {
		entries := []models.Entry{}
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	wrapped := struct {
		Entries []models.Entry `json:"entries"`
	}{}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Entries, nil
}

func describeWindow(window services.Window) string {
	if window.All {
		return "all time"
	}
	return fmt.Sprintf("last %d days", window.Days)
}
