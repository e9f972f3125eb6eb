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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/bridge"
	"github.com/stockparfait/marketdata/gateway"
	"github.com/stockparfait/marketdata/provider"
	"github.com/stockparfait/marketdata/refdata"
	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(t *testing.T) {
	t.Parallel()

	tmpdir, tmpdirErr := os.MkdirTemp("", "test_blp_fetch")
	defer os.RemoveAll(tmpdir)

	Convey("Setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("parseFlags", t, func() {
		Convey("snapshot", func() {
			flags, err := parseFlags([]string{
				"-config", "path/to/config.toml", "-log-level", "warning",
				"-securities", "IBM_US_Equity, SPX_Index", "-fields", "PX_LAST,NAME", "-csv"})
			So(err, ShouldBeNil)
			So(flags.Config, ShouldEqual, "path/to/config.toml")
			So(flags.LogLevel, ShouldEqual, logging.Warning)
			So(flags.Securities, ShouldResemble, []string{"IBM_US_Equity", "SPX_Index"})
			So(flags.Fields, ShouldResemble, []string{"PX_LAST", "NAME"})
			So(flags.CSV, ShouldBeTrue)
		})

		Convey("history", func() {
			flags, err := parseFlags([]string{
				"-history", "IBM US Equity", "-field", "PX_LAST",
				"-start", "20240101", "-summary"})
			So(err, ShouldBeNil)
			So(flags.History, ShouldEqual, "IBM US Equity")
			So(flags.Field, ShouldEqual, "PX_LAST")
			So(flags.Start, ShouldEqual, "20240101")
			So(flags.End, ShouldEqual, "")
			So(flags.Summary, ShouldBeTrue)
			So(flags.LogLevel, ShouldEqual, logging.Info)
		})

		Convey("errors", func() {
			_, err := parseFlags([]string{})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-securities", "A", "-history", "B", "-field", "F"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-securities", "A"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-history", "A"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-securities", "A", "-fields", "F", "-summary"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("parseConfig", t, func() {
		fileName := filepath.Join(tmpdir, "config.toml")

		Convey("missing file", func() {
			_, err := parseConfig(filepath.Join(tmpdir, "missing.toml"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "does not exist")
		})

		Convey("partial config keeps defaults", func() {
			So(testutil.WriteFile(fileName, `host = "md.example.com"
timeout = 2.5
`), ShouldBeNil)
			c, err := parseConfig(fileName)
			So(err, ShouldBeNil)
			So(c.Host, ShouldEqual, "md.example.com")
			So(c.Port, ShouldEqual, gateway.DefaultPort)
			So(c.Service, ShouldEqual, gateway.DefaultService)
			So(c.Timeout, ShouldEqual, 2.5)
		})

		Convey("invalid config", func() {
			So(testutil.WriteFile(fileName, `port = 123456
`), ShouldBeNil)
			_, err := parseConfig(fileName)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("lookup works", t, func() {
		ctx := context.Background()
		configFile := filepath.Join(tmpdir, "lookup.toml")
		So(testutil.WriteFile(configFile, `host = "localhost"
port = 8194
service = "//blp/refdata"
`), ShouldBeNil)

		session := func(s provider.Session) func(*gateway.Config) provider.Session {
			return func(*gateway.Config) provider.Session { return s }
		}
		final := func(m *provider.Message) *provider.Event {
			return provider.NewEvent(provider.EventResponse, m)
		}
		history := final(refdata.TestHistoryMessage("IBM US Equity",
			refdata.TestHistoryRow("2024-01-02", "PX_LAST", "101.5"),
			refdata.TestHistoryRow("2024-01-03", "PX_LAST", "102.0")))

		Convey("snapshot as text", func() {
			s := provider.NewTestSession(final(refdata.TestSnapshotMessage(
				refdata.TestSecurity("IBM US Equity", []*provider.Element{
					refdata.TestField("PX_LAST", "101.5"),
					refdata.TestField("NAME", "IBM"),
				}))))
			flags, err := parseFlags([]string{"-config", configFile,
				"-securities", "IBM_US_Equity", "-fields", "PX_LAST,NAME"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(lookup(ctx, flags, &buf, session(s)), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
     Security |   Field | Value
------------- | ------- | -----
IBM US Equity | PX_LAST | 101.5
IBM US Equity |    NAME |   IBM
`)
			So(s.Sent[0].Strings(provider.Securities), ShouldResemble, []string{"IBM US Equity"})
			So(s.Stopped, ShouldBeTrue)
		})

		Convey("history as CSV", func() {
			s := provider.NewTestSession(history)
			flags, err := parseFlags([]string{"-config", configFile,
				"-history", "IBM US Equity", "-field", "PX_LAST", "-end", "20240131", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(lookup(ctx, flags, &buf, session(s)), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
Date,Value
2024-01-02,101.5
2024-01-03,102.0
`)
		})

		Convey("history summary", func() {
			s := provider.NewTestSession(history)
			flags, err := parseFlags([]string{"-config", configFile,
				"-history", "IBM US Equity", "-field", "PX_LAST", "-end", "20240131",
				"-summary", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(lookup(ctx, flags, &buf, session(s)), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
Statistic,Value
count,2
skipped,0
first,2024-01-02
last,2024-01-03
min,101.5000
max,102.0000
mean,101.7500
stddev,0.3536
change,0.49%
`)
		})

		Convey("history stopped by an invalid security", func() {
			s := provider.NewTestSession(final(
				refdata.TestInvalidHistoryMessage("BAD", "Unknown/Invalid security")))
			flags, err := parseFlags([]string{"-config", configFile,
				"-history", "BAD", "-field", "PX_LAST", "-end", "20240131", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			err = lookup(ctx, flags, &buf, session(s))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "stopped early")
			So(buf.String(), ShouldEqual, "Date,Value\n")
			So(s.Stopped, ShouldBeTrue)
		})

		Convey("connection failure", func() {
			s := provider.NewTestSession()
			s.StartErr = os.ErrDeadlineExceeded
			flags, err := parseFlags([]string{"-config", configFile,
				"-history", "A", "-field", "PX_LAST"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			err = lookup(ctx, flags, &buf, session(s))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "failed to connect")
		})

		Convey("snapshot through the HTTP bridge", func() {
			server := testutil.NewTestServer()
			defer server.Close()
			server.ResponseBody = []string{
				`{"status": "ok", "session": "s1"}`,
				`{"status": "ok", "service": "//blp/refdata",
				  "operations": ["ReferenceDataRequest", "HistoricalDataRequest"]}`,
				`{"status": "ok"}`,
				`{"status": "ok", "eventType": "RESPONSE", "messages": [{
				  "messageType": "ReferenceDataResponse",
				  "elements": [{"name": "securityData", "array": true, "values": [
				    {"name": "securityData", "elements": [
				      {"name": "security", "value": "SPX Index"},
				      {"name": "fieldData", "elements": [{"name": "PX_LAST", "value": "4780.24"}]},
				      {"name": "fieldExceptions", "array": true}
				    ]}
				  ]}]
				}]}`,
				`{"status": "ok"}`,
			}
			ctx := fetch.UseClient(ctx, server.Client())
			newSession := func(*gateway.Config) provider.Session {
				return bridge.NewSession(server.URL() + "/blpapi")
			}
			flags, err := parseFlags([]string{"-config", configFile,
				"-securities", "SPX_Index", "-fields", "PX_LAST", "-csv"})
			So(err, ShouldBeNil)
			var buf bytes.Buffer
			So(lookup(ctx, flags, &buf, newSession), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
Security,Field,Value
SPX Index,PX_LAST,4780.24
`)
			So(server.RequestPath, ShouldEqual, "/blpapi/session/stop")
		})
	})
}
