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
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/bridge"
	"github.com/stockparfait/marketdata/gateway"
	"github.com/stockparfait/marketdata/provider"
	"github.com/stockparfait/marketdata/refdata"
	"github.com/stockparfait/marketdata/summary"
	"github.com/stockparfait/marketdata/table"

	toml "github.com/pelletier/go-toml/v2"
)

type Flags struct {
	Config   string // default: ~/.stockparfait/blp/config.toml
	LogLevel logging.Level
	// Exactly one of Securities or History must be present.
	Securities []string // snapshot lookup for these securities
	Fields     []string // required with Securities
	History    string   // historical lookup for this security
	Field      string   // required with History
	Start      string   // default: 19700101
	End        string   // default: today
	CSV        bool     // dump CSV format; default: text.
	Summary    bool     // print statistics of the history instead of the data
}

func splitList(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	var securities, fields string
	fs := flag.NewFlagSet("blp-fetch", flag.ExitOnError)
	fs.StringVar(&flags.Config, "config",
		filepath.Join(os.Getenv("HOME"), ".stockparfait", "blp", "config.toml"),
		"connection config file")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.StringVar(&securities, "securities", "",
		"comma-separated securities for a snapshot lookup; '_' stands for a space")
	fs.StringVar(&fields, "fields", "", "comma-separated fields for a snapshot lookup")
	fs.StringVar(&flags.History, "history", "", "security for a historical lookup")
	fs.StringVar(&flags.Field, "field", "", "field for a historical lookup")
	fs.StringVar(&flags.Start, "start", "", "start date of the history, YYYYMMDD")
	fs.StringVar(&flags.End, "end", "", "end date of the history, YYYYMMDD; default: today")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	fs.BoolVar(&flags.Summary, "summary", false, "print statistics of the history")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	flags.Securities = splitList(securities)
	flags.Fields = splitList(fields)
	if (len(flags.Securities) > 0) == (flags.History != "") {
		return nil, errors.Reason("expected exactly one of -securities or -history")
	}
	if len(flags.Securities) > 0 && len(flags.Fields) == 0 {
		return nil, errors.Reason("-securities requires -fields")
	}
	if flags.History != "" && flags.Field == "" {
		return nil, errors.Reason("-history requires -field")
	}
	if flags.Summary && flags.History == "" {
		return nil, errors.Reason("-summary requires -history")
	}
	return &flags, nil
}

func parseConfig(filePath string) (*gateway.Config, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sample := `host = "localhost"
port = 8194
service = "//blp/refdata"
timeout = 30.0  # seconds to wait for each event; 0 = forever
`
			err = errors.Annotate(err,
				"config file '%s' does not exist.\nPlease create config file containing:\n%s",
				filePath, sample)
			return nil, err
		}
		return nil, errors.Annotate(err,
			"cannot check config file for existence: '%s'", filePath)
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	c := gateway.DefaultConfig()
	d := toml.NewDecoder(f)
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Annotate(err, "invalid config file %s", filePath)
	}
	return &c, nil
}

func newBridgeSession(c *gateway.Config) provider.Session {
	return bridge.NewSession(bridge.URL(c.Host, c.Port))
}

func write(w io.Writer, header []string, rows iterator.Iterator[table.Row], csv bool) error {
	var err error
	if csv {
		_, err = table.WriteCSV(w, header, rows, table.Params{})
	} else {
		_, err = table.WriteText(w, header, rows, table.Params{})
	}
	return err
}

func lookup(ctx context.Context, flags *Flags, w io.Writer, newSession func(*gateway.Config) provider.Session) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	g, err := gateway.Connect(ctx, newSession(config), *config)
	if err != nil {
		return errors.Annotate(err, "failed to connect")
	}
	defer func() {
		if err := g.Close(ctx); err != nil {
			logging.Warningf(ctx, "failed to close the session: %s", err.Error())
		}
	}()
	ctx = gateway.Use(ctx, g)

	if len(flags.Securities) > 0 {
		it := refdata.FetchSnapshot(ctx, flags.Securities, flags.Fields)
		rows := table.Rows[refdata.ReferenceDataItem](it)
		if err := write(w, refdata.ReferenceDataItemHeader(), rows, flags.CSV); err != nil {
			return errors.Annotate(err, "failed to print snapshot")
		}
		if err := it.Err(); err != nil {
			return errors.Annotate(err, "snapshot lookup stopped early")
		}
		return nil
	}

	it := refdata.FetchHistory(ctx, flags.History, flags.Field, flags.Start, flags.End)
	if flags.Summary {
		points := refdata.Collect[refdata.HistoricalPoint](it)
		if err := it.Err(); err != nil {
			return errors.Annotate(err, "historical lookup stopped early")
		}
		stats := summary.Summarize(points).Stats()
		if err := write(w, summary.StatHeader(), table.FromSlice(stats), flags.CSV); err != nil {
			return errors.Annotate(err, "failed to print summary")
		}
		return nil
	}
	rows := table.Rows[refdata.HistoricalPoint](it)
	if err := write(w, refdata.HistoricalPointHeader(), rows, flags.CSV); err != nil {
		return errors.Annotate(err, "failed to print history")
	}
	if err := it.Err(); err != nil {
		return errors.Annotate(err, "historical lookup stopped early")
	}
	return nil
}

func main() {
	ctx := context.Background()
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := lookup(ctx, flags, os.Stdout, newBridgeSession); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
