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

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/marketdata/provider"

	. "github.com/smartystreets/goconvey/convey"
)

// blockingSession never produces an event.
type blockingSession struct {
	provider.TestSession
}

func (s *blockingSession) NextEvent(ctx context.Context) (*provider.Event, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGateway(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("Config works correctly", t, func() {
		c := DefaultConfig()
		So(c.Validate(), ShouldBeNil)
		So(c.Address(), ShouldEqual, "localhost:8194")
		So(c.Service, ShouldEqual, "//blp/refdata")
		So(c.EventTimeout(), ShouldEqual, time.Duration(0))

		c.Timeout = 1.5
		So(c.EventTimeout(), ShouldEqual, 1500*time.Millisecond)

		bad := DefaultConfig()
		bad.Host = ""
		So(bad.Validate(), ShouldNotBeNil)

		bad = DefaultConfig()
		bad.Port = 0
		So(bad.Validate(), ShouldNotBeNil)

		bad = DefaultConfig()
		bad.Service = ""
		So(bad.Validate(), ShouldNotBeNil)

		bad = DefaultConfig()
		bad.Timeout = -1
		So(bad.Validate(), ShouldNotBeNil)
	})

	Convey("Connect works correctly", t, func() {
		Convey("opens the configured service", func() {
			s := provider.NewTestSession()
			g, err := Connect(ctx, s, DefaultConfig())
			So(err, ShouldBeNil)
			So(s.Started, ShouldBeTrue)
			So(s.Opened, ShouldResemble, []string{"//blp/refdata"})
			So(g.Service().Name(), ShouldEqual, "//blp/refdata")
			So(g.Config(), ShouldResemble, DefaultConfig())

			req, err := g.CreateRequest(provider.ReferenceDataRequest)
			So(err, ShouldBeNil)
			_, err = g.Send(ctx, req)
			So(err, ShouldBeNil)
			So(len(s.Sent), ShouldEqual, 1)

			So(g.Close(ctx), ShouldBeNil)
			So(s.Stopped, ShouldBeTrue)
			So(g.Close(ctx), ShouldBeNil)
			_, err = g.CreateRequest(provider.ReferenceDataRequest)
			So(err, ShouldNotBeNil)
			_, err = g.Send(ctx, req)
			So(err, ShouldNotBeNil)
			_, err = g.NextEvent(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("a failed Close can be retried", func() {
			s := provider.NewTestSession()
			g, err := Connect(ctx, s, DefaultConfig())
			So(err, ShouldBeNil)
			s.StopErr = errors.Reason("network down")
			err = g.Close(ctx)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to stop session")
			So(s.Stopped, ShouldBeFalse)
			_, err = g.CreateRequest(provider.ReferenceDataRequest)
			So(err, ShouldBeNil)

			s.StopErr = nil
			So(g.Close(ctx), ShouldBeNil)
			So(s.Stopped, ShouldBeTrue)
		})

		Convey("fails when the session does not start", func() {
			s := provider.NewTestSession()
			s.StartErr = errors.Reason("connection refused")
			_, err := Connect(ctx, s, DefaultConfig())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to start session")
			So(s.Opened, ShouldBeNil)
		})

		Convey("fails when the service does not open", func() {
			s := provider.NewTestSession()
			s.OpenErr = errors.Reason("unknown service")
			_, err := Connect(ctx, s, DefaultConfig())
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to open //blp/refdata")
		})

		Convey("fails on invalid config", func() {
			s := provider.NewTestSession()
			c := DefaultConfig()
			c.Port = 70000
			_, err := Connect(ctx, s, c)
			So(err, ShouldNotBeNil)
			So(s.Started, ShouldBeFalse)
		})
	})

	Convey("context injection", t, func() {
		So(Get(ctx), ShouldBeNil)
		g, err := Connect(ctx, provider.NewTestSession(), DefaultConfig())
		So(err, ShouldBeNil)
		So(Get(Use(ctx, g)), ShouldEqual, g)
	})

	Convey("NextEvent honors the timeout", t, func() {
		c := DefaultConfig()
		c.Timeout = 0.01
		g, err := Connect(ctx, &blockingSession{}, c)
		So(err, ShouldBeNil)
		_, err = g.NextEvent(ctx)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "no event within")
	})

	Convey("NextEvent reports the caller's deadline as is", t, func() {
		c := DefaultConfig()
		c.Timeout = 60
		g, err := Connect(ctx, &blockingSession{}, c)
		So(err, ShouldBeNil)
		tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err = g.NextEvent(tctx)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldNotContainSubstring, "no event within")
		So(err, ShouldEqual, context.DeadlineExceeded)
	})
}
