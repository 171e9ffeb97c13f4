package export

import (
	"context"
	"encoding/json"
	"io"

	"cleargate-hq/cleargate/pkg/audit"
)

// JSONExporter exports audit entries as a JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes the entries to w as a JSON array. An empty input writes an
// empty array.
func (e *JSONExporter) Export(ctx context.Context, entries []*audit.Entry, w io.Writer) error {
	if entries == nil {
		entries = []*audit.Entry{}
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(entries, "", "  ")
	} else {
		data, err = json.Marshal(entries)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}
