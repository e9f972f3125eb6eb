// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package table prints result rows as aligned text or CSV.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
)

// Row interface that a table row representation must implement.
type Row interface {
	CSV() []string // an encoding/csv compatible row representation
}

// Params are parameters for pretty-printing or CSV export of rows.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

type rowIter[T Row] struct {
	it iterator.Iterator[T]
}

func (r *rowIter[T]) Next() (Row, bool) {
	v, ok := r.it.Next()
	if !ok {
		return nil, false
	}
	return v, true
}

// Rows adapts an iterator over a concrete row type to an iterator over Row.
func Rows[T Row](it iterator.Iterator[T]) iterator.Iterator[Row] {
	return &rowIter[T]{it: it}
}

// FromSlice creates an iterator over Row from a slice of a concrete row type.
func FromSlice[T Row](rows []T) iterator.Iterator[Row] {
	return Rows[T](iterator.FromSlice(rows))
}

// WriteCSV writes rows to w in CSV format as they come from the iterator. It
// returns the number of rows written, excluding the header.
func WriteCSV(w io.Writer, header []string, rows iterator.Iterator[Row], p Params) (int, error) {
	cw := csv.NewWriter(w)
	if !p.NoHeader && len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return 0, errors.Annotate(err, "failed to write header")
		}
	}
	n := 0
	for p.Rows <= 0 || n < p.Rows {
		r, ok := rows.Next()
		if !ok {
			break
		}
		if err := cw.Write(r.CSV()); err != nil {
			return n, errors.Annotate(err, "failed to write row %d", n)
		}
		n++
		cw.Flush() // keep the output streaming
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, errors.Annotate(err, "failed to flush written rows")
	}
	return n, nil
}

// WriteText writes rows as a text formatted for ease of reading. Column widths
// depend on all the rows, so the output starts only after the iterator is
// exhausted.
func WriteText(w io.Writer, header []string, rows iterator.Iterator[Row], p Params) (int, error) {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return 0, errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	var lines [][]string
	for p.Rows <= 0 || len(lines) < p.Rows {
		r, ok := rows.Next()
		if !ok {
			break
		}
		lines = append(lines, r.CSV())
	}
	var widths []int
	update := func(row []string) error {
		if len(row) == 0 {
			return errors.Reason("row size = 0")
		}
		if len(widths) == 0 {
			widths = make([]int, len(row))
		}
		if len(row) != len(widths) {
			return errors.Reason("row size [%d] != expected size [%d]",
				len(row), len(widths))
		}
		for i := range widths {
			if l := len([]rune(row[i])); widths[i] < l {
				widths[i] = l
				if p.MaxColWidth > 0 && widths[i] > p.MaxColWidth {
					widths[i] = p.MaxColWidth
				}
			}
		}
		return nil
	}

	write := func(row []string) error {
		cells := make([]string, len(row))
		for i, s := range row {
			if r := []rune(s); len(r) > widths[i] {
				s = string(r[:widths[i]-2]) + ".."
			}
			cells[i] = fmt.Sprintf("%[2]*[1]s", s, widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(cells, " | "))
		return err
	}

	withHeader := !p.NoHeader && len(header) > 0
	if withHeader {
		if err := update(header); err != nil {
			return 0, errors.Annotate(err, "failed to update header widths")
		}
	}
	for i, l := range lines {
		if err := update(l); err != nil {
			return 0, errors.Annotate(err, "failed to update row %d widths", i)
		}
	}
	if withHeader {
		if err := write(header); err != nil {
			return 0, errors.Annotate(err, "failed to write header")
		}
		dashes := make([]string, len(widths))
		for i, n := range widths {
			dashes[i] = strings.Repeat("-", n)
		}
		if err := write(dashes); err != nil {
			return 0, errors.Annotate(err, "failed to write header separator")
		}
	}
	for i, l := range lines {
		if err := write(l); err != nil {
			return i, errors.Annotate(err, "failed to write row %d", i)
		}
	}
	return len(lines), nil
}
