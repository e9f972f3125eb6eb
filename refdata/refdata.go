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

// Package refdata implements the two lookups of the reference data service:
// point-in-time field values for a batch of securities (FetchSnapshot), and a
// daily series of one field of one security (FetchHistory).
//
// Both return lazy single-pass iterators. The request is sent on the first
// call to Next, and provider events are read only as the caller consumes the
// results. Once an iterator is exhausted, it stays exhausted; repeat the
// lookup to fetch the data again. Err() tells a normal end of the data from
// an early stop due to an error.
//
// The lookups use the gateway.Gateway from the context, and must not run
// concurrently on the same gateway.
package refdata

import (
	"strings"
	"time"

	"github.com/stockparfait/iterator"
	"github.com/stockparfait/marketdata/calendar"
)

// Now is the clock used to resolve the default end date of FetchHistory. It
// may be overwritten in tests.
var Now = time.Now

// ReferenceDataItem is a single field value of a security in a snapshot.
type ReferenceDataItem struct {
	Security string
	Field    string
	Value    string
}

// CSV implements table.Row.
func (r ReferenceDataItem) CSV() []string {
	return []string{r.Security, r.Field, r.Value}
}

// ReferenceDataItemHeader is the table header matching ReferenceDataItem.CSV.
func ReferenceDataItemHeader() []string {
	return []string{"Security", "Field", "Value"}
}

// HistoricalPoint is the value of a field on a given date.
type HistoricalPoint struct {
	Date  calendar.Date
	Value string
}

// CSV implements table.Row.
func (p HistoricalPoint) CSV() []string {
	return []string{p.Date.String(), p.Value}
}

// HistoricalPointHeader is the table header matching HistoricalPoint.CSV.
func HistoricalPointHeader() []string {
	return []string{"Date", "Value"}
}

// NormalizeSecurity converts a security identifier to the provider's form,
// replacing every underscore by a space: "IBM_US_Equity" -> "IBM US Equity".
func NormalizeSecurity(security string) string {
	return strings.ReplaceAll(security, "_", " ")
}

// Collect drains the iterator into a slice.
func Collect[T any](it iterator.Iterator[T]) []T {
	return iterator.Reduce[T, []T](it, []T{}, func(v T, acc []T) []T {
		return append(acc, v)
	})
}
