package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"cleargate-hq/cleargate/pkg/audit"
)

// csvHeader is the column order for CSV exports.
var csvHeader = []string{
	"id", "timestamp", "file_id", "directory_id", "destination",
	"provider", "decision", "reason", "policy", "sensitive_data",
}

// CSVExporter exports audit entries in CSV format with a header row.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the entries to w as CSV. The header row is always written,
// even for an empty input.
func (e *CSVExporter) Export(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, entry := range entries {
		record := []string{
			entry.ID,
			entry.Timestamp.Format(time.RFC3339),
			entry.FileID,
			entry.DirectoryID,
			entry.Destination,
			entry.Provider,
			entry.Decision,
			entry.Reason,
			entry.Policy,
			strconv.FormatBool(entry.SensitiveData),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
