// Copyright 2024 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package summary computes descriptive statistics of a historical series.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stockparfait/marketdata/calendar"
	"github.com/stockparfait/marketdata/refdata"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary of the numeric values of a series. Values which do not parse as
// numbers are counted in Skipped and otherwise ignored.
type Summary struct {
	Count   int
	Skipped int
	First   calendar.Date // date of the first numeric value
	Last    calendar.Date // date of the last numeric value
	Min     float64
	Max     float64
	Mean    float64
	StdDev  float64 // unbiased sample standard deviation; 0 for Count < 2
	Change  float64 // relative change from the first to the last value
}

// Summarize the points.
func Summarize(points []refdata.HistoricalPoint) Summary {
	var s Summary
	values := make([]float64, 0, len(points))
	for _, p := range points {
		v, err := strconv.ParseFloat(strings.TrimSpace(p.Value), 64)
		if err != nil {
			s.Skipped++
			continue
		}
		if len(values) == 0 {
			s.First = p.Date
		}
		s.Last = p.Date
		values = append(values, v)
	}
	s.Count = len(values)
	if s.Count == 0 {
		return s
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	if s.Count == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if first := values[0]; first != 0 {
		s.Change = values[len(values)-1]/first - 1.0
	}
	return s
}

// Stat is a single named statistic, for printing as a table.
type Stat struct {
	Name  string
	Value string
}

// CSV implements table.Row.
func (s Stat) CSV() []string {
	return []string{s.Name, s.Value}
}

// StatHeader is the table header matching Stat.CSV.
func StatHeader() []string {
	return []string{"Statistic", "Value"}
}

// Stats lists the statistics in a printable form.
func (s Summary) Stats() []Stat {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	stats := []Stat{
		{"count", fmt.Sprintf("%d", s.Count)},
		{"skipped", fmt.Sprintf("%d", s.Skipped)},
	}
	if s.Count == 0 {
		return stats
	}
	return append(stats,
		Stat{"first", s.First.String()},
		Stat{"last", s.Last.String()},
		Stat{"min", num(s.Min)},
		Stat{"max", num(s.Max)},
		Stat{"mean", num(s.Mean)},
		Stat{"stddev", num(s.StdDev)},
		Stat{"change", fmt.Sprintf("%.2f%%", s.Change*100.0)},
	)
}
