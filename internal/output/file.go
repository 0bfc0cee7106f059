package output

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"adoscan/internal/inventory"
)

// FileSink writes the aggregated records to a file. The format is
// dispatched on the file extension unless given explicitly:
// .csv (header row + one row per record), .json (indented array),
// .ndjson (event stream), .xml (array-of-record elements).
type FileSink struct {
	path       string
	format     string
	file       *os.File
	mu         sync.Mutex
	records    []inventory.Record
	csvWriter  *csv.Writer
	csvStarted bool
	// csvHeader is written on Close when no record arrived, so an empty
	// run still produces a parseable CSV file.
	csvHeader []string
}

type FileOption func(*FileSink)

// WithCSVHeader sets the header row a CSV export falls back to when the
// run produced zero records.
func WithCSVHeader(header []string) FileOption {
	return func(s *FileSink) {
		s.csvHeader = header
	}
}

func NewFileSink(path string, format string, opts ...FileOption) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".csv":
			format = "csv"
		case ".json":
			format = "json"
		case ".ndjson", ".jsonl":
			format = "ndjson"
		case ".xml":
			format = "xml"
		default:
			return nil, fmt.Errorf("cannot infer output format from file extension %q", ext)
		}
	}

	switch format {
	case "csv", "json", "ndjson", "xml":
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	s := &FileSink{
		path:   path,
		format: format,
		file:   f,
	}
	for _, apply := range opts {
		if apply != nil {
			apply(s)
		}
	}
	if format == "csv" {
		s.csvWriter = csv.NewWriter(f)
	}
	return s, nil
}

func (s *FileSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "csv":
		r, ok := v.(inventory.Record)
		if !ok {
			// Ignore lifecycle events in tabular mode.
			return nil
		}
		if !s.csvStarted {
			if err := s.csvWriter.Write(r.Header()); err != nil {
				return err
			}
			s.csvStarted = true
		}
		return s.csvWriter.Write(r.Row())
	case "json", "xml":
		r, ok := v.(inventory.Record)
		if !ok {
			return nil
		}
		s.records = append(s.records, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.file)
		switch t := v.(type) {
		case Event:
			return encoder.Encode(t)
		case inventory.Record:
			return encoder.Encode(eventFromRecord(t))
		default:
			return nil
		}
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch s.format {
	case "csv":
		if !s.csvStarted && len(s.csvHeader) > 0 {
			err = s.csvWriter.Write(s.csvHeader)
		}
		s.csvWriter.Flush()
		if err == nil {
			err = s.csvWriter.Error()
		}
	case "json":
		encoder := json.NewEncoder(s.file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(s.records)
	case "xml":
		err = writeXMLRecords(s.file, s.records)
	}

	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func writeXMLRecords(f *os.File, records []inventory.Record) error {
	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(f)
	encoder.Indent("", "  ")

	start := xml.StartElement{Name: xml.Name{Local: "records"}}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			return err
		}
	}
	if err := encoder.EncodeToken(start.End()); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err := f.WriteString("\n")
	return err
}
