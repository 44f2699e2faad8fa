package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/jcrsync/pkg/models"
)

// statusOrder is the legend order of the status report
var statusOrder = []models.StatusCode{
	models.StatusModified,
	models.StatusAddedLocally,
	models.StatusDeletedLocally,
	models.StatusConflictDirVsFile,
	models.StatusConflictFileVsDir,
}

// WriteDifferencesReport writes the status entries to a file
// Format can be "human" or "json"
func WriteDifferencesReport(report *models.Report, path string, format string) error {
	if len(report.Entries) == 0 {
		// No differences - don't create empty file
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create differences file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		err = writeDifferencesJSON(report, file)
	default: // "human"
		err = writeDifferencesHuman(report, file)
	}
	if err != nil {
		return fmt.Errorf("failed to write differences file: %w", err)
	}
	return file.Close()
}

// writeDifferencesHuman writes entries grouped by status
func writeDifferencesHuman(report *models.Report, w io.Writer) error {
	fmt.Fprintf(w, "Differences Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Filter: %s\n", report.FilterPath)
	fmt.Fprintf(w, "Server: %s\n\n", report.Server)

	fmt.Fprintf(w, "Total Differences: %d\n\n", len(report.Entries))

	byStatus := make(map[models.StatusCode][]models.DiffEntry)
	for _, entry := range report.Entries {
		byStatus[entry.Status] = append(byStatus[entry.Status], entry)
	}

	for _, status := range statusOrder {
		entries := byStatus[status]
		if len(entries) == 0 {
			continue
		}

		label := fmt.Sprintf("%s  %s (%d files)", status, status.Description(), len(entries))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, entry := range entries {
			fmt.Fprintf(w, "  %s\n", entry.Path)
		}

		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeDifferencesJSON writes entries in JSON format
func writeDifferencesJSON(report *models.Report, w io.Writer) error {
	output := struct {
		Generated  string             `json:"generated"`
		FilterPath string             `json:"filter_path"`
		Server     string             `json:"server"`
		TotalCount int                `json:"total_count"`
		Entries    []models.DiffEntry `json:"entries"`
	}{
		Generated:  time.Now().Format(time.RFC3339),
		FilterPath: report.FilterPath,
		Server:     report.Server,
		TotalCount: len(report.Entries),
		Entries:    report.Entries,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
