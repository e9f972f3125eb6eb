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

package provider

import (
	"encoding/json"

	"github.com/stockparfait/errors"
	"golang.org/x/exp/slices"
)

// Request operations of the reference data service.
const (
	ReferenceDataRequest  = "ReferenceDataRequest"
	HistoricalDataRequest = "HistoricalDataRequest"
)

// RefDataOperations are the operations a reference data service supports.
var RefDataOperations = []string{ReferenceDataRequest, HistoricalDataRequest}

// Request is a builder for a single provider request.
type Request struct {
	Service   string
	Operation string
	body      *Element
}

// NewRequest creates an empty request. Normally requests are created by
// Service.CreateRequest.
func NewRequest(service, operation string) *Request {
	return &Request{Service: service, Operation: operation, body: Complex(operation)}
}

func (r *Request) element(name string) *Element {
	if e := r.body.find(name); e != nil {
		return e
	}
	e := &Element{Name: name}
	r.body.Elements = append(r.body.Elements, e)
	return e
}

// Append adds string values to the named array element, creating it as
// needed.
func (r *Request) Append(name string, values ...string) {
	e := r.element(name)
	for _, v := range values {
		e.AppendValue(Scalar("", v))
	}
	e.IsArray = true
}

// Set the named scalar element to value.
func (r *Request) Set(name, value string) {
	e := r.element(name)
	e.Value = value
}

// Strings returns the values of an array element, or a single-element slice
// for a scalar. A missing element yields nil.
func (r *Request) Strings(name string) []string {
	e := r.body.find(name)
	if e == nil {
		return nil
	}
	if !e.IsArray {
		return []string{e.ValueAsString()}
	}
	res := make([]string, e.NumValues())
	for i := range res {
		res[i] = e.ValueAt(i).ValueAsString()
	}
	return res
}

// Get returns the value of a scalar element, or "" if missing.
func (r *Request) Get(name string) string {
	return r.body.find(name).ValueAsString()
}

// MarshalJSON implements json.Marshaler for the request payload.
func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.body)
}

// Service is a handle to an opened provider service. It is read-only after
// creation.
type Service struct {
	name       string
	operations []string
}

// NewService creates a service handle. An empty operations list accepts any
// operation.
func NewService(name string, operations ...string) *Service {
	return &Service{name: name, operations: slices.Clone(operations)}
}

// Name of the service, e.g. "//blp/refdata".
func (s *Service) Name() string {
	return s.name
}

// Operations supported by the service.
func (s *Service) Operations() []string {
	return slices.Clone(s.operations)
}

// CreateRequest for the given operation.
func (s *Service) CreateRequest(operation string) (*Request, error) {
	if len(s.operations) > 0 && !slices.Contains(s.operations, operation) {
		return nil, errors.Reason("service %s does not support operation %s",
			s.name, operation)
	}
	return NewRequest(s.name, operation), nil
}
