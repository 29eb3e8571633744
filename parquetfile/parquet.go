package parquetfile

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/parquet-go/parquet-go"
)

const readBatch = 256

// File is an open parquet file
type File struct {
	f      *os.File
	pf     *parquet.File
	cols   []string
	levels []leafLevels
}

func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	file := &File{f: f, pf: pf, cols: make([]string, 0)}
	file.walk(pf.Schema(), nil, 0, 0)
	return file, nil
}

// leafLevels holds the definition level at which a leaf's first
// repeated ancestor is present, zero when nothing above it repeats
type leafLevels struct {
	listDef int
}

// walk collects the leaf columns in the same depth first order
// parquet assigns column indexes
func (f *File) walk(n parquet.Node, path []string, def, listDef int) {
	for _, field := range n.Fields() {
		d, ld := def, listDef
		if field.Optional() || field.Repeated() {
			d++
		}
		if field.Repeated() && ld == 0 {
			ld = d
		}

		p := append(path[:len(path):len(path)], field.Name())
		if field.Leaf() {
			f.cols = append(f.cols, strings.Join(p, "."))
			f.levels = append(f.levels, leafLevels{listDef: ld})
			continue
		}
		f.walk(field, p, d, ld)
	}
}

func (f *File) Close() error {
	return f.f.Close()
}

// Columns are the dotted paths of the leaf columns in schema order
func (f *File) Columns() []string {
	return f.cols
}

// Rows calls fn with the cells of each row, one per leaf column.
// Repeated columns always become a []any cell, empty when the row
// holds no elements. Nulls are nil
func (f *File) Rows(fn func([]any) error) error {
	buf := make([]parquet.Row, readBatch)
	for _, rg := range f.pf.RowGroups() {
		if err := f.rowGroup(rg, buf, fn); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) rowGroup(rg parquet.RowGroup, buf []parquet.Row, fn func([]any) error) error {
	rows := rg.Rows()
	defer rows.Close()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			if err := fn(f.cells(row)); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (f *File) cells(row parquet.Row) []any {
	cells := make([]any, len(f.cols))
	for i, l := range f.levels {
		if l.listDef > 0 {
			cells[i] = []any{}
		}
	}

	for _, v := range row {
		i := v.Column()
		if i < 0 || i >= len(cells) {
			continue
		}
		l := f.levels[i]
		if l.listDef == 0 {
			cells[i] = cell(v)
			continue
		}

		// Below the list's definition level the list holds no elements
		if v.DefinitionLevel() < l.listDef {
			if v.DefinitionLevel() < l.listDef-1 {
				cells[i] = nil
			}
			continue
		}
		list, _ := cells[i].([]any)
		cells[i] = append(list, cell(v))
	}
	return cells
}

func cell(v parquet.Value) any {
	if v.IsNull() {
		return nil
	}

	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return v.Int32()
	case parquet.Int64:
		return v.Int64()
	case parquet.Int96:
		return fmt.Sprint(v.Int96())
	case parquet.Float:
		return v.Float()
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		b := v.ByteArray()
		if utf8.Valid(b) {
			return string(b)
		}
		return "0x" + hex.EncodeToString(b)
	default:
		return v.String()
	}
}

type RowGroupInfo struct {
	Rows          int64
	Columns       int
	TotalByteSize int64
}

type Info struct {
	Version   int32
	CreatedBy string
	Rows      int64
	RowGroups []RowGroupInfo
	Schema    string
}

func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Version: %d\n", i.Version)
	fmt.Fprintf(&sb, "Created By: %s\n", i.CreatedBy)
	fmt.Fprintf(&sb, "Rows: %d\n", i.Rows)
	fmt.Fprintf(&sb, "Row Groups: %d\n", len(i.RowGroups))
	for n, rg := range i.RowGroups {
		fmt.Fprintf(&sb, "  %d: rows=%d columns=%d size=%d\n", n, rg.Rows, rg.Columns, rg.TotalByteSize)
	}
	fmt.Fprintf(&sb, "Schema:\n%s", i.Schema)
	return sb.String()
}

func (f *File) Info() Info {
	md := f.pf.Metadata()
	info := Info{
		Version:   md.Version,
		CreatedBy: md.CreatedBy,
		Rows:      md.NumRows,
		Schema:    f.pf.Schema().String(),
	}
	for _, rg := range md.RowGroups {
		info.RowGroups = append(info.RowGroups, RowGroupInfo{
			Rows:          rg.NumRows,
			Columns:       len(rg.Columns),
			TotalByteSize: rg.TotalByteSize,
		})
	}
	return info
}

// Inspect writes the metadata of the file at path to w
func Inspect(w io.Writer, path string) error {
	f, err := Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintln(w, f.Info())
	return err
}
