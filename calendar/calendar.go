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

// Package calendar implements a compact calendar date used by the historical
// data lookups, and conversions between the provider's date formats.
package calendar

import (
	"fmt"
	"time"

	"github.com/stockparfait/errors"
)

// CompactFormat is the YYYYMMDD layout used by the provider for request date
// bounds.
const CompactFormat = "20060102"

// Epoch is the default start of a historical range.
const Epoch = "19700101"

// layouts accepted by NewDateFromString, most specific first.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	CompactFormat,
}

// Date records a calendar date as year, month and day.
type Date struct {
	Year  uint16
	Month uint8
	Day   uint8
}

// NewDate is the constructor for Date.
func NewDate(year uint16, month, day uint8) Date {
	return Date{year, month, day}
}

// NewDateFromTime creates a Date from the calendar day of t in its own
// location.
func NewDateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: uint16(y), Month: uint8(m), Day: uint8(d)}
}

// NewDateFromString parses either an ISO date (with an optional time part,
// which is dropped) or a compact YYYYMMDD date.
func NewDateFromString(s string) (Date, error) {
	var err error
	for _, l := range layouts {
		var t time.Time
		if t, err = time.Parse(l, s); err == nil {
			return NewDateFromTime(t), nil
		}
	}
	return Date{}, errors.Annotate(err, "unrecognized date '%s'", s)
}

// Today returns the calendar date of now in its location.
func Today(now time.Time) Date {
	return NewDateFromTime(now)
}

// String representation of the value, YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compact representation of the value, YYYYMMDD.
func (d Date) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// NormalizeCompact checks that s is a valid date in any supported format and
// returns it as YYYYMMDD. An empty string is returned unchanged.
func NormalizeCompact(s string) (string, error) {
	if s == "" {
		return s, nil
	}
	d, err := NewDateFromString(s)
	if err != nil {
		return "", errors.Annotate(err, "invalid date bound")
	}
	return d.Compact(), nil
}
