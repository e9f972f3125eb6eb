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
	"context"
	"fmt"

	"github.com/stockparfait/errors"
)

// Session is a connection to the provider. Implementations are not required
// to support concurrent use: a request must be fully drained before the next
// one is sent.
type Session interface {
	// Start establishes the connection.
	Start(ctx context.Context) error
	// OpenService makes the named service available via Service().
	OpenService(ctx context.Context, name string) error
	// Service returns the handle of an opened service.
	Service(name string) (*Service, error)
	// SendRequest submits the request and returns its correlation ID.
	SendRequest(ctx context.Context, req *Request) (string, error)
	// NextEvent blocks until the next event is available or ctx is done.
	NextEvent(ctx context.Context) (*Event, error)
	// Stop releases the connection.
	Stop(ctx context.Context) error
}

// TestSession is a scripted Session for use in tests. NextEvent serves Events
// in order and fails once they are exhausted, instead of blocking forever.
type TestSession struct {
	Events   []*Event
	Sent     []*Request // requests received by SendRequest
	Opened   []string   // services opened by OpenService
	Started  bool
	Stopped  bool
	Polls    int // number of NextEvent calls
	StartErr error
	OpenErr  error
	SendErr  error
	StopErr  error
	// Operations reported for opened services; default: RefDataOperations.
	Operations []string
}

var _ Session = &TestSession{}

// NewTestSession creates a TestSession serving the given events.
func NewTestSession(events ...*Event) *TestSession {
	return &TestSession{Events: events}
}

func (s *TestSession) Start(ctx context.Context) error {
	if s.StartErr != nil {
		return s.StartErr
	}
	s.Started = true
	return nil
}

func (s *TestSession) OpenService(ctx context.Context, name string) error {
	if !s.Started {
		return errors.Reason("session is not started")
	}
	if s.OpenErr != nil {
		return s.OpenErr
	}
	s.Opened = append(s.Opened, name)
	return nil
}

func (s *TestSession) Service(name string) (*Service, error) {
	for _, n := range s.Opened {
		if n == name {
			ops := s.Operations
			if ops == nil {
				ops = RefDataOperations
			}
			return NewService(name, ops...), nil
		}
	}
	return nil, errors.Reason("service %s is not open", name)
}

func (s *TestSession) SendRequest(ctx context.Context, req *Request) (string, error) {
	if s.SendErr != nil {
		return "", s.SendErr
	}
	s.Sent = append(s.Sent, req)
	return fmt.Sprintf("test-%d", len(s.Sent)), nil
}

func (s *TestSession) NextEvent(ctx context.Context) (*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.Polls++
	if len(s.Events) == 0 {
		return nil, errors.Reason("TestSession: no more events")
	}
	e := s.Events[0]
	s.Events = s.Events[1:]
	return e, nil
}

func (s *TestSession) Stop(ctx context.Context) error {
	if s.StopErr != nil {
		return s.StopErr
	}
	s.Stopped = true
	return nil
}
