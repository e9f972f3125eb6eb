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

// Package gateway owns the single provider session and the service handle
// shared by the reference data lookups.
//
// A Gateway is created once by Connect and injected into the context with
// Use. It is not safe for concurrent use: each lookup sends a request and
// drains its events before the next lookup may start, and the provider
// session is not assumed to multiplex requests.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/provider"
)

type contextKey int

const (
	gatewayContextKey contextKey = iota
)

// Default connection parameters.
const (
	DefaultHost    = "localhost"
	DefaultPort    = 8194
	DefaultService = "//blp/refdata"
)

// Config of the provider connection.
type Config struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Service string `toml:"service"`
	// Maximum wait for a single event, in seconds; 0 waits forever.
	Timeout float64 `toml:"timeout"`
}

// DefaultConfig returns the configuration with all the default values.
func DefaultConfig() Config {
	return Config{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Service: DefaultService,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.Reason("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Reason("port %d is out of range [1..65535]", c.Port)
	}
	if c.Service == "" {
		return errors.Reason("service is required")
	}
	if c.Timeout < 0 {
		return errors.Reason("timeout %g must be >= 0", c.Timeout)
	}
	return nil
}

// Address of the provider as host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EventTimeout is the Timeout as time.Duration.
func (c *Config) EventTimeout() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

// Gateway is a connected provider session with an opened service.
type Gateway struct {
	config  Config
	session provider.Session
	service *provider.Service
	closed  bool
}

// Connect starts the session and opens the configured service. Failures are
// not retried.
func Connect(ctx context.Context, session provider.Session, config Config) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Annotate(err, "invalid config")
	}
	logging.Infof(ctx, "Connecting to %s", config.Address())
	if err := session.Start(ctx); err != nil {
		return nil, errors.Annotate(err, "failed to start session")
	}
	if err := session.OpenService(ctx, config.Service); err != nil {
		return nil, errors.Annotate(err, "failed to open %s", config.Service)
	}
	service, err := session.Service(config.Service)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open %s", config.Service)
	}
	return &Gateway{config: config, session: session, service: service}, nil
}

// Use injects the Gateway into the context.
func Use(ctx context.Context, g *Gateway) context.Context {
	return context.WithValue(ctx, gatewayContextKey, g)
}

// Get extracts the Gateway from the context, if any.
func Get(ctx context.Context) *Gateway {
	g, ok := ctx.Value(gatewayContextKey).(*Gateway)
	if !ok {
		return nil
	}
	return g
}

// Config the gateway was connected with.
func (g *Gateway) Config() Config {
	return g.config
}

// Service handle opened by Connect.
func (g *Gateway) Service() *provider.Service {
	return g.service
}

// CreateRequest for the given operation of the service.
func (g *Gateway) CreateRequest(operation string) (*provider.Request, error) {
	if g.closed {
		return nil, errors.Reason("gateway is closed")
	}
	return g.service.CreateRequest(operation)
}

// Send the request to the provider.
func (g *Gateway) Send(ctx context.Context, req *provider.Request) (string, error) {
	if g.closed {
		return "", errors.Reason("gateway is closed")
	}
	return g.session.SendRequest(ctx, req)
}

// NextEvent waits for the next event from the session, up to the configured
// timeout.
func (g *Gateway) NextEvent(ctx context.Context) (*provider.Event, error) {
	if g.closed {
		return nil, errors.Reason("gateway is closed")
	}
	ectx := ctx
	if d := g.config.EventTimeout(); d > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	e, err := g.session.NextEvent(ectx)
	if err != nil {
		// The caller's own deadline is reported as is.
		if ctx.Err() == nil && ectx.Err() == context.DeadlineExceeded {
			return nil, errors.Annotate(err, "no event within %s", g.config.EventTimeout())
		}
		return nil, err
	}
	return e, nil
}

// Close stops the session. Once it succeeds, subsequent calls are no-ops; a
// failed Close may be retried.
func (g *Gateway) Close(ctx context.Context) error {
	if g.closed {
		return nil
	}
	if err := g.session.Stop(ctx); err != nil {
		return errors.Annotate(err, "failed to stop session")
	}
	g.closed = true
	return nil
}
