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

// Package bridge implements provider.Session on top of an HTTP gateway process
// which relays the provider's session API as JSON.
//
// All the calls are GET requests relative to the base URL, typically
// http://host:port/blpapi:
//
//   /session/start                              -> {"status", "session"}
//   /service/open?session=&service=             -> {"status", "service", "operations"}
//   /request?session=&service=&operation=&correlationId=&request=
//                                               -> {"status", "correlationId"}
//   /event?session=                             -> {"status", "eventType", "messages"}
//   /session/stop?session=                      -> {"status"}
//
// A status other than "ok" comes with an "error" string and fails the call.
// The /event call is a long poll: the gateway holds it until an event is
// available. The HTTP client is taken from the context (see fetch.UseClient),
// so its timeouts apply to each call.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/provider"
)

// StatusOK is the value of the status field of a successful call.
const StatusOK = "ok"

// URL returns the default base URL of a gateway at host:port.
func URL(host string, port int) string {
	return fmt.Sprintf("http://%s:%d/blpapi", host, port)
}

// status is common to all the responses.
type status struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *status) check() error {
	if s.Status != StatusOK {
		if s.Error == "" {
			return errors.Reason("gateway status '%s'", s.Status)
		}
		return errors.Reason("gateway status '%s': %s", s.Status, s.Error)
	}
	return nil
}

type checker interface {
	check() error
}

type startResponse struct {
	status
	Session string `json:"session"`
}

type openResponse struct {
	status
	Service    string   `json:"service"`
	Operations []string `json:"operations"`
}

type sendResponse struct {
	status
	CorrelationID string `json:"correlationId"`
}

type eventResponse struct {
	status
	provider.Event
}

type stopResponse struct {
	status
}

// Session is a provider.Session talking to the gateway. It is not safe for
// concurrent use.
type Session struct {
	baseURL  string
	id       string // assigned by the gateway on start
	services map[string]*provider.Service
}

var _ provider.Session = &Session{}

// NewSession creates a session for the gateway at baseURL. No connection is
// made until Start.
func NewSession(baseURL string) *Session {
	return &Session{
		baseURL:  baseURL,
		services: make(map[string]*provider.Service),
	}
}

// ID of the session assigned by the gateway, or "" if not started.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) get(ctx context.Context, path string, query url.Values, res checker) error {
	uri := s.baseURL + path
	if err := fetch.FetchJSON(ctx, uri, res, query, nil); err != nil {
		return errors.Annotate(err, "failed to fetch %s", uri)
	}
	if err := res.check(); err != nil {
		return errors.Annotate(err, "%s failed", path)
	}
	return nil
}

func (s *Session) query() (url.Values, error) {
	if s.id == "" {
		return nil, errors.Reason("session is not started")
	}
	q := make(url.Values)
	q.Set("session", s.id)
	return q, nil
}

// Start the session.
func (s *Session) Start(ctx context.Context) error {
	var res startResponse
	if err := s.get(ctx, "/session/start", make(url.Values), &res); err != nil {
		return errors.Annotate(err, "failed to start session")
	}
	if res.Session == "" {
		return errors.Reason("gateway returned empty session ID")
	}
	s.id = res.Session
	logging.Debugf(ctx, "started gateway session %s", s.id)
	return nil
}

// OpenService opens the named service and records its operations.
func (s *Session) OpenService(ctx context.Context, name string) error {
	q, err := s.query()
	if err != nil {
		return err
	}
	q.Set("service", name)
	var res openResponse
	if err := s.get(ctx, "/service/open", q, &res); err != nil {
		return errors.Annotate(err, "failed to open service %s", name)
	}
	s.services[name] = provider.NewService(name, res.Operations...)
	return nil
}

// Service returns the handle of an opened service.
func (s *Session) Service(name string) (*provider.Service, error) {
	svc, ok := s.services[name]
	if !ok {
		return nil, errors.Reason("service %s is not open", name)
	}
	return svc, nil
}

// SendRequest submits the request tagged with a fresh correlation ID.
func (s *Session) SendRequest(ctx context.Context, req *provider.Request) (string, error) {
	q, err := s.query()
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Annotate(err, "failed to encode %s", req.Operation)
	}
	cid := uuid.NewString()
	q.Set("service", req.Service)
	q.Set("operation", req.Operation)
	q.Set("correlationId", cid)
	q.Set("request", string(body))
	var res sendResponse
	if err := s.get(ctx, "/request", q, &res); err != nil {
		return "", errors.Annotate(err, "failed to send %s", req.Operation)
	}
	if res.CorrelationID != "" && res.CorrelationID != cid {
		return "", errors.Reason("gateway acknowledged correlation ID %s, sent %s",
			res.CorrelationID, cid)
	}
	logging.Debugf(ctx, "sent %s [%s]", req.Operation, cid)
	return cid, nil
}

// NextEvent polls the gateway for the next event.
func (s *Session) NextEvent(ctx context.Context) (*provider.Event, error) {
	q, err := s.query()
	if err != nil {
		return nil, err
	}
	var res eventResponse
	if err := s.get(ctx, "/event", q, &res); err != nil {
		return nil, errors.Annotate(err, "failed to read next event")
	}
	e := res.Event
	return &e, nil
}

// Stop the session. Stopping a session which was never started is a no-op.
func (s *Session) Stop(ctx context.Context) error {
	if s.id == "" {
		return nil
	}
	q, err := s.query()
	if err != nil {
		return err
	}
	var res stopResponse
	if err := s.get(ctx, "/session/stop", q, &res); err != nil {
		return errors.Annotate(err, "failed to stop session %s", s.id)
	}
	logging.Debugf(ctx, "stopped gateway session %s", s.id)
	s.id = ""
	return nil
}
