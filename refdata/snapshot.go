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
	"github.com/stockparfait/marketdata/gateway"
	"github.com/stockparfait/marketdata/provider"
	"golang.org/x/exp/slices"
)

// SnapshotIterator yields ReferenceDataItem's of a snapshot lookup in the
// order the provider sends them.
type SnapshotIterator struct {
	ctx        context.Context
	securities []string
	fields     []string
	gateway    *gateway.Gateway
	buf        []ReferenceDataItem // translated items not yet returned
	started    bool                // if the request was sent
	done       bool                // if no more events will be read
	err        error
}

var _ iterator.Iterator[ReferenceDataItem] = &SnapshotIterator{}

// FetchSnapshot looks up the current values of fields for each of the
// securities. Identifiers are normalized with NormalizeSecurity. A security
// the provider reports as invalid yields no items, and field exceptions are
// only logged; neither stops the iteration.
func FetchSnapshot(ctx context.Context, securities, fields []string) *SnapshotIterator {
	return &SnapshotIterator{
		ctx:        ctx,
		securities: slices.Clone(securities),
		fields:     slices.Clone(fields),
	}
}

// Next returns the next item. When there are no more items, the second
// value is false, and Err() reports whether the iteration stopped early.
func (it *SnapshotIterator) Next() (ReferenceDataItem, bool) {
	for len(it.buf) == 0 {
		if it.done {
			return ReferenceDataItem{}, false
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
	item := it.buf[0]
	it.buf = it.buf[1:]
	return item, true
}

// Err is the reason the iteration stopped early, or nil.
func (it *SnapshotIterator) Err() error {
	return it.err
}

func (it *SnapshotIterator) stop(err error) {
	it.done = true
	it.err = err
}

func (it *SnapshotIterator) send() error {
	if len(it.securities) == 0 {
		return errors.Reason("no securities requested")
	}
	if len(it.fields) == 0 {
		return errors.Reason("no fields requested")
	}
	it.gateway = gateway.Get(it.ctx)
	if it.gateway == nil {
		return errors.Reason("no gateway in context")
	}
	req, err := it.gateway.CreateRequest(provider.ReferenceDataRequest)
	if err != nil {
		return errors.Annotate(err, "failed to create request")
	}
	for _, s := range it.securities {
		req.Append(provider.Securities, NormalizeSecurity(s))
	}
	req.Append(provider.Fields, it.fields...)
	if _, err := it.gateway.Send(it.ctx, req); err != nil {
		return errors.Annotate(err, "failed to send request")
	}
	return nil
}

// poll reads one event and translates its messages into the buffer.
func (it *SnapshotIterator) poll() error {
	e, err := it.gateway.NextEvent(it.ctx)
	if err != nil {
		return errors.Annotate(err, "failed to read event")
	}
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

func (it *SnapshotIterator) drain(msg *provider.Message) error {
	ctx := it.ctx
	logging.Infof(ctx, "--%s", msg.Type)
	secs, err := msg.GetElement(provider.SecurityData)
	if err != nil {
		return errors.Annotate(err, "malformed %s", msg.Type)
	}
	for i := 0; i < secs.NumValues(); i++ {
		sec := secs.ValueAt(i)
		if sec == nil {
			continue
		}
		tk, err := sec.GetElementAsString(provider.Security)
		if err != nil {
			return errors.Annotate(err, "malformed %s", msg.Type)
		}
		if sec.HasElement(provider.SecurityError) {
			logging.Warningf(ctx, "Invalid Security: %s", tk)
			continue
		}
		if fd, err := sec.GetElement(provider.FieldData); err == nil {
			for j := 0; j < fd.NumElements(); j++ {
				f := fd.ElementAt(j)
				if f == nil {
					continue
				}
				v := f.ValueAsString()
				logging.Infof(ctx, "---- %s: %s", f.Name, v)
				it.buf = append(it.buf, ReferenceDataItem{Security: tk, Field: f.Name, Value: v})
			}
		}
		if ex, err := sec.GetElement(provider.FieldExceptions); err == nil {
			for j := 0; j < ex.NumValues(); j++ {
				e := ex.ValueAt(j)
				if e == nil {
					continue
				}
				id, _ := e.GetElementAsString(provider.FieldID)
				var text string
				if info, err := e.GetElement(provider.ErrorInfo); err == nil {
					text, _ = info.GetElementAsString(provider.MessageText)
				}
				logging.Errorf(ctx, "Field Error for '%s': [%s] %s", tk, id, text)
			}
		}
	}
	return nil
}
