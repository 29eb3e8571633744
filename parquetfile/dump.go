package parquetfile

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
)

type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

var ErrUnknownFormat = errors.New("unknown format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatPretty:
		return f, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
}

type sink interface {
	header(cols []string) error
	row(cols []string, cells []any) error
	flush() error
}

// Dump writes the rows of every file in order. The csv and pretty
// formats share one header so all files must have the same columns
func Dump(w io.Writer, paths []string, format Format) error {
	var s sink
	switch format {
	case FormatCSV:
		s = &csvSink{w: csv.NewWriter(w)}
	case FormatJSON:
		s = &jsonSink{enc: json.NewEncoder(w)}
	case FormatPretty:
		s = &prettySink{table: tablewriter.NewWriter(w)}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	var cols []string
	for i, path := range paths {
		f, err := Open(path)
		if err != nil {
			return err
		}

		if i == 0 {
			cols = f.Columns()
			if err := s.header(cols); err != nil {
				f.Close()
				return err
			}
		} else if format != FormatJSON && !slices.Equal(cols, f.Columns()) {
			f.Close()
			return fmt.Errorf("%s: columns %v do not match %v", path, f.Columns(), cols)
		}

		fcols := f.Columns()
		err = f.Rows(func(cells []any) error {
			return s.row(fcols, cells)
		})
		f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}

	return s.flush()
}

type csvSink struct {
	w *csv.Writer
}

func (s *csvSink) header(cols []string) error {
	return s.w.Write(cols)
}

func (s *csvSink) row(_ []string, cells []any) error {
	record := make([]string, len(cells))
	for i, c := range cells {
		record[i] = text(c)
	}
	return s.w.Write(record)
}

func (s *csvSink) flush() error {
	s.w.Flush()
	return s.w.Error()
}

type jsonSink struct {
	enc *json.Encoder
}

func (s *jsonSink) header([]string) error { return nil }

func (s *jsonSink) row(cols []string, cells []any) error {
	obj := make(map[string]any, len(cols))
	for i, c := range cols {
		obj[c] = cells[i]
	}
	return s.enc.Encode(obj)
}

func (s *jsonSink) flush() error { return nil }

type prettySink struct {
	table *tablewriter.Table
}

func (s *prettySink) header(cols []string) error {
	s.table.SetAutoFormatHeaders(false)
	s.table.SetHeader(cols)
	return nil
}

func (s *prettySink) row(_ []string, cells []any) error {
	record := make([]string, len(cells))
	for i, c := range cells {
		record[i] = text(c)
	}
	s.table.Append(record)
	return nil
}

func (s *prettySink) flush() error {
	s.table.Render()
	return nil
}

func text(c any) string {
	switch v := c.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(v))
		for i := range v {
			parts[i] = text(v[i])
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(v)
	}
}
