// Package data loads and writes the tabular CSV datasets the churn pipeline
// trains on and builds its reference profile from.
package data

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
)

// Frame is an in-memory CSV table of raw string cells.
type Frame struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewFrame builds a Frame. Every row must have one cell per header column.
func NewFrame(header []string, rows [][]string) (*Frame, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; dup {
			return nil, errors.Wrapf(errs.ErrDataUnavailable, "duplicate column %q", h)
		}
		index[h] = i
	}
	for i, r := range rows {
		if len(r) != len(header) {
			return nil, errors.Wrapf(errs.ErrDataUnavailable, "row %d has %d cells, want %d", i, len(r), len(header))
		}
	}
	return &Frame{Header: header, Rows: rows, index: index}, nil
}

func (f *Frame) Len() int { return len(f.Rows) }

// Has reports whether the frame carries column name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a copy of the cells of column name.
func (f *Frame) Column(name string) ([]string, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, errors.Wrapf(errs.ErrDataUnavailable, "missing column %q", name)
	}
	out := make([]string, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r[j]
	}
	return out, nil
}

// Select projects the frame onto names, in that order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		j, ok := f.index[n]
		if !ok {
			return nil, errors.Wrapf(errs.ErrDataUnavailable, "missing column %q", n)
		}
		idx[k] = j
	}
	rows := make([][]string, len(f.Rows))
	for i, r := range f.Rows {
		row := make([]string, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		rows[i] = row
	}
	return NewFrame(append([]string(nil), names...), rows)
}

// Subset returns the frame restricted to the given row indices.
func (f *Frame) Subset(rows []int) *Frame {
	out := make([][]string, len(rows))
	for k, i := range rows {
		out[k] = f.Rows[i]
	}
	return &Frame{Header: f.Header, Rows: out, index: f.index}
}

// StreamCSV parses CSV records from r and sends them on the returned
// channel. The header row is returned separately. The records channel is
// closed at EOF, on the first read error, or when ctx is done; the error, if
// any, is delivered on errc afterwards.
func StreamCSV(ctx context.Context, r io.Reader) (header []string, records <-chan []string, errc <-chan error, err error) {
	reader := csv.NewReader(bufio.NewReader(r))
	header, err = reader.Read()
	if err == io.EOF {
		return nil, nil, nil, errors.Wrap(errs.ErrDataUnavailable, "empty csv: no header")
	}
	if err != nil {
		return nil, nil, nil, errors.Wrapf(errs.ErrDataUnavailable, "read header: %v", err)
	}

	out := make(chan []string, 64)
	ec := make(chan error, 1)
	go func() {
		defer close(ec)
		defer close(out)
		for {
			if err := ctx.Err(); err != nil {
				ec <- err
				return
			}
			rec, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				ec <- errors.Wrapf(errs.ErrDataUnavailable, "read csv: %v", err)
				return
			}
			select {
			case out <- rec:
			case <-ctx.Done():
				ec <- ctx.Err()
				return
			}
		}
	}()
	return header, out, ec, nil
}

// ReadCSV loads a whole CSV table from r.
func ReadCSV(ctx context.Context, r io.Reader) (*Frame, error) {
	header, records, errc, err := StreamCSV(ctx, r)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for rec := range records {
		rows = append(rows, rec)
	}
	if err := <-errc; err != nil {
		return nil, err
	}
	return NewFrame(header, rows)
}

// ReadCSVFile loads the CSV table stored at path.
func ReadCSVFile(ctx context.Context, path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrDataUnavailable, "open %s: %v", path, err)
	}
	defer file.Close()
	f, err := ReadCSV(ctx, file)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

// WriteCSV writes the header and every row to w.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := cw.WriteAll(f.Rows); err != nil {
		return errors.Wrap(err, "write rows")
	}
	return nil
}

// WriteCSVFile writes the frame to path, replacing any existing file.
func (f *Frame) WriteCSVFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := f.WriteCSV(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
