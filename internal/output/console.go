package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"adoscan/internal/inventory"
)

// ConsoleSink renders scan progress for humans (text) or machines
// (json/ndjson) on stdout.
type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "json", "ndjson"
	mu      sync.Mutex
	records []inventory.Record // For JSON array output
}

func NewConsoleSink(w io.Writer, format string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{
		writer: w,
		format: format,
	}
}

var (
	okLabel   = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.FgRed).SprintFunc()
	warnLabel = color.New(color.FgYellow).SprintFunc()
	boldText  = color.New(color.Bold).SprintfFunc()
)

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	switch s.format {
	case "json":
		r, ok := v.(inventory.Record)
		if !ok {
			// Ignore lifecycle events in JSON aggregate mode.
			return nil
		}
		s.records = append(s.records, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case inventory.Record:
			if err := encoder.Encode(eventFromRecord(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		e, ok := v.(Event)
		if !ok {
			// Records go to --out; text mode only narrates the run.
			return nil
		}
		return s.writeTextEvent(e)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeTextEvent(e Event) error {
	switch e.Type {
	case "target.finished":
		var err error
		switch {
		case e.Error == "":
			_, err = fmt.Fprintf(s.writer, "[ %s ] %s\n", okLabel("OK"), e.Target)
		case e.Denied:
			_, err = fmt.Fprintf(s.writer, "[%s] %s - %s\n", warnLabel("SKIP"), e.Target, e.Error)
		default:
			_, err = fmt.Fprintf(s.writer, "[%s] %s - %s\n", failLabel("FAIL"), e.Target, e.Error)
		}
		if err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "run.finished":
		_, err := fmt.Fprintln(s.writer, boldText("%d succeeded, %d failed, %d records",
			e.Succeeded, e.Failed, e.Records))
		if err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return nil
	}
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.records); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
