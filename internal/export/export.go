// Package export writes dataset rows to CSV or XLSX files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pable/go-tennis-features/internal/model"
)

// Output formats accepted by Create.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SheetName is the worksheet XLSX output is written to.
const SheetName = "Sheet1"

// Writer is a row sink that must be closed to flush buffered output.
type Writer interface {
	Write(model.Row) error
	Close() error
}

// Create opens path for writing in the given format.
func Create(path, format string) (Writer, error) {
	switch format {
	case FormatCSV:
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		w, err := NewCSV(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		w.closer = f
		return w, nil
	case FormatXLSX:
		w, err := NewXLSX(path)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want csv or xlsx)", format)
}

// CSVWriter writes rows as comma-separated values with a header line.
// Missing values are written as empty cells.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
	rec    []string
}

// NewCSV writes the header to w and returns a CSVWriter over it.
func NewCSV(w io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(w), rec: make([]string, len(model.Columns))}
	if err := cw.w.Write(model.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return cw, nil
}

// Write appends one row.
func (c *CSVWriter) Write(r model.Row) error {
	for i, v := range r.Values() {
		c.rec[i] = formatCell(v)
	}
	return c.w.Write(c.rec)
}

// Close flushes buffered output and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		err = errors.Join(err, c.closer.Close())
	}
	return err
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// XLSXWriter streams rows into a single-sheet workbook saved on Close.
type XLSXWriter struct {
	path string
	file *excelize.File
	sw   *excelize.StreamWriter
	row  int
}

// NewXLSX starts a workbook that will be saved to path.
func NewXLSX(path string) (*XLSXWriter, error) {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("new stream writer: %w", err)
	}
	x := &XLSXWriter{path: path, file: f, sw: sw}
	header := make([]any, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = c
	}
	if err := x.append(header); err != nil {
		f.Close()
		return nil, err
	}
	return x, nil
}

func (x *XLSXWriter) append(values []any) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	if err := x.sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("row %d: %w", x.row, err)
	}
	return nil
}

// Write appends one row. Missing values are left as empty cells.
func (x *XLSXWriter) Write(r model.Row) error {
	return x.append(r.Values())
}

// Close flushes the stream and saves the workbook.
func (x *XLSXWriter) Close() error {
	defer x.file.Close()
	if err := x.sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := x.file.SaveAs(x.path); err != nil {
		return fmt.Errorf("save %s: %w", x.path, err)
	}
	return nil
}

// Multi fans each row out to every sink in order, stopping at the first error.
type Multi []interface{ Write(model.Row) error }

// Write implements the row sink interface.
func (m Multi) Write(r model.Row) error {
	for _, s := range m {
		if err := s.Write(r); err != nil {
			return err
		}
	}
	return nil
}
