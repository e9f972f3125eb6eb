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

package refdata

import (
	"context"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/calendar"
	"github.com/stockparfait/marketdata/gateway"
	"github.com/stockparfait/marketdata/provider"
)

// HistoryIterator yields HistoricalPoint's of a historical lookup in the order
// the provider sends them.
type HistoryIterator struct {
	ctx      context.Context
	security string
	field    string
	start    string // YYYYMMDD
	end      string // YYYYMMDD
	gateway  *gateway.Gateway
	buf      []HistoricalPoint
	started  bool
	done     bool
	err      error
}

var _ iterator.Iterator[HistoricalPoint] = &HistoryIterator{}

// FetchHistory looks up daily values of the field for the security between
// start and end inclusive, given as YYYYMMDD (ISO dates are converted). An
// empty start means calendar.Epoch, and an empty end means today, as of this
// call.
//
// Unlike FetchSnapshot, any error reported by the provider stops the whole
// iteration: a response error, an invalid security, or a row missing the
// requested field.
func FetchHistory(ctx context.Context, security, field, start, end string) *HistoryIterator {
	if start == "" {
		start = calendar.Epoch
	}
	if end == "" {
		end = calendar.Today(Now()).Compact()
	}
	return &HistoryIterator{
		ctx:      ctx,
		security: security,
		field:    field,
		start:    start,
		end:      end,
	}
}

// Next returns the next point. When there are no more points, the second
// value is false, and Err() reports whether the iteration stopped early.
func (it *HistoryIterator) Next() (HistoricalPoint, bool) {
	for len(it.buf) == 0 {
		if it.done {
			return HistoricalPoint{}, false
		}
		if !it.started {
			it.started = true
			if err := it.send(); err != nil {
				it.stop(err)
			}
			continue
		}
		if err := it.poll(); err != nil {
			it.stop(err)
		}
	}
	p := it.buf[0]
	it.buf = it.buf[1:]
	return p, true
}

// Err is the reason the iteration stopped early, or nil.
func (it *HistoryIterator) Err() error {
	return it.err
}

func (it *HistoryIterator) stop(err error) {
	it.done = true
	it.err = err
}

func (it *HistoryIterator) send() error {
	if it.security == "" {
		return errors.Reason("no security requested")
	}
	if it.field == "" {
		return errors.Reason("no field requested")
	}
	start, err := calendar.NormalizeCompact(it.start)
	if err != nil {
		return errors.Annotate(err, "invalid start date")
	}
	end, err := calendar.NormalizeCompact(it.end)
	if err != nil {
		return errors.Annotate(err, "invalid end date")
	}
	it.gateway = gateway.Get(it.ctx)
	if it.gateway == nil {
		return errors.Reason("no gateway in context")
	}
	req, err := it.gateway.CreateRequest(provider.HistoricalDataRequest)
	if err != nil {
		return errors.Annotate(err, "failed to create request")
	}
	req.Append(provider.Securities, it.security)
	req.Append(provider.Fields, it.field)
	req.Set(provider.StartDate, start)
	req.Set(provider.EndDate, end)
	if _, err := it.gateway.Send(it.ctx, req); err != nil {
		return errors.Annotate(err, "failed to send request")
	}
	return nil
}

func (it *HistoryIterator) poll() error {
	e, err := it.gateway.NextEvent(it.ctx)
	if err != nil {
		return errors.Annotate(err, "failed to read event")
	}
	logging.Infof(it.ctx, "-%s", e.Type)
	if e.Type.IsResponse() {
		for _, msg := range e.Messages {
			if err := it.drain(msg); err != nil {
				return err
			}
		}
	}
	if e.Type == provider.EventResponse {
		it.done = true
	}
	return nil
}

func (it *HistoryIterator) drain(msg *provider.Message) error {
	ctx := it.ctx
	if re, err := msg.GetElement(provider.ResponseError); err == nil {
		logging.Errorf(ctx, "EOD History Error: %s", re)
		return errors.Reason("response error: %s", re)
	}
	sec, err := msg.GetElement(provider.SecurityData)
	if err != nil {
		return errors.Annotate(err, "malformed %s", msg.Type)
	}
	tk, err := sec.GetElementAsString(provider.Security)
	if err != nil {
		return errors.Annotate(err, "malformed %s", msg.Type)
	}
	if se, err := sec.GetElement(provider.SecurityError); err == nil {
		logging.Warningf(ctx, "Invalid Security: %s", tk)
		return errors.Reason("invalid security %s: %s", tk, se)
	}
	logging.Infof(ctx, "--- %s", tk)
	fd, err := sec.GetElement(provider.FieldData)
	if err != nil {
		return nil // no rows in this message
	}
	for j := 0; j < fd.NumValues(); j++ {
		row := fd.ValueAt(j)
		if row == nil {
			continue
		}
		ds, err := row.GetElementAsString(provider.DateElement)
		if err != nil {
			return errors.Annotate(err, "malformed row %d for %s", j, tk)
		}
		date, err := calendar.NewDateFromString(ds)
		if err != nil {
			return errors.Annotate(err, "malformed row %d for %s", j, tk)
		}
		if !row.HasElement(it.field) {
			logging.Infof(ctx, "Invalid Field: %s", it.field)
			return errors.Reason("field %s is missing for %s on %s", it.field, tk, date)
		}
		v, _ := row.GetElementAsString(it.field)
		it.buf = append(it.buf, HistoricalPoint{Date: date, Value: v})
	}
	return nil
}
