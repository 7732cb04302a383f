// Copyright 2023 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command fmp queries the Financial Modeling Prep API and prints the results.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/db"
	"github.com/stockparfait/marketdata/fmp"
	"github.com/stockparfait/marketdata/stats"
	"github.com/stockparfait/marketdata/table"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/slices"
)

// KeyEnv is the environment variable with the API key.
const KeyEnv = "FMP_API_KEY"

type Flags struct {
	Endpoint string
	Symbols  []string
	Format   string
	CSV      bool
	Period   string
	Limit    int
	Interval string
	From     db.Date
	To       db.Date
	Quarter  string
	Year     string
	Write    bool
	Dir      string
	Describe bool
	Columns  []string
	Workers  int
	Config   string // TOML config file, optional
	EnvFile  string // .env file, optional
	Key      string
	URL      string
	LogLevel logging.Level
}

func splitList(s string) []string {
	var res []string
	for _, x := range strings.Split(s, ",") {
		if x = strings.TrimSpace(x); x != "" {
			res = append(res, x)
		}
	}
	return res
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	var symbols, columns, from, to string
	fs := flag.NewFlagSet("fmp", flag.ExitOnError)
	fs.StringVar(&flags.Endpoint, "endpoint", "",
		"API endpoint: "+strings.Join(endpointNames(), ", "))
	fs.StringVar(&symbols, "symbols", "", "comma separated list of symbols")
	fs.StringVar(&flags.Format, "format", "", "output format: json (default) or table")
	fs.BoolVar(&flags.CSV, "csv", false, "print the table as CSV")
	fs.StringVar(&flags.Period, "period", "", "report period: annual or quarter")
	fs.IntVar(&flags.Limit, "limit", 0, "number of reports; 0 for the API default")
	fs.StringVar(&flags.Interval, "interval", "1hour",
		"chart interval: "+strings.Join(fmp.Intervals(), ", "))
	fs.StringVar(&from, "from", "", "start date YYYY-MM-DD, inclusive")
	fs.StringVar(&to, "to", "", "end date YYYY-MM-DD, inclusive")
	fs.StringVar(&flags.Quarter, "quarter", "", "earning call transcript quarter")
	fs.StringVar(&flags.Year, "year", "", "earning call transcript year")
	fs.BoolVar(&flags.Write, "write", false, "persist results into dated files")
	fs.StringVar(&flags.Dir, "dir", "", "directory for the persisted files")
	fs.BoolVar(&flags.Describe, "describe", false, "print numeric column statistics")
	fs.StringVar(&columns, "columns", "", "comma separated columns to print")
	fs.IntVar(&flags.Workers, "workers", 1, "number of symbols to fetch in parallel")
	fs.StringVar(&flags.Config, "config", "", "TOML config file")
	fs.StringVar(&flags.EnvFile, "env", ".env", "file with environment variables")
	fs.StringVar(&flags.Key, "key", "", "API key; overrides config and "+KeyEnv)
	fs.StringVar(&flags.URL, "url", "", "API base URL")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	flags.Symbols = splitList(symbols)
	flags.Columns = splitList(columns)
	if flags.Workers < 1 {
		flags.Workers = 1
	}
	var err error
	if from != "" {
		if flags.From, err = db.NewDateFromString(from); err != nil {
			return nil, errors.Annotate(err, "invalid -from")
		}
	}
	if to != "" {
		if flags.To, err = db.NewDateFromString(to); err != nil {
			return nil, errors.Annotate(err, "invalid -to")
		}
	}
	if !flags.From.IsZero() && !flags.To.IsZero() && flags.From.After(flags.To) {
		return nil, errors.Reason("-from %s is after -to %s", flags.From, flags.To)
	}
	return &flags, nil
}

type Config struct {
	Key         string `toml:"key"`
	Format      string `toml:"format"`
	WriteToFile bool   `toml:"write_to_file"`
	Dir         string `toml:"dir"`
	URL         string `toml:"url"`
}

func parseConfig(filePath string) (*Config, error) {
	if filePath == "" {
		return &Config{}, nil
	}
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sample := `key = "YourSecretFMPKey"
format = "table"
write_to_file = false
dir = "."
`
			return nil, errors.Annotate(err,
				"config file '%s' does not exist.\nPlease create config file containing:\n%s",
				filePath, sample)
		}
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	return &c, nil
}

// apiKey in the order of precedence: flag, config, process environment, env
// file.
func apiKey(flags *Flags, config *Config, getenv func(string) string) (string, error) {
	if flags.Key != "" {
		return flags.Key, nil
	}
	if config.Key != "" {
		return config.Key, nil
	}
	if k := getenv(KeyEnv); k != "" {
		return k, nil
	}
	if flags.EnvFile != "" {
		if _, err := os.Stat(flags.EnvFile); err == nil {
			env, err := godotenv.Read(flags.EnvFile)
			if err != nil {
				return "", errors.Annotate(err, "failed to read %s", flags.EnvFile)
			}
			if k := env[KeyEnv]; k != "" {
				return k, nil
			}
		}
	}
	return "", errors.Reason("API key is not set: use -key, config 'key' or %s", KeyEnv)
}

// newClient never persists by itself: results of several symbols share one
// file, which run writes once.
func newClient(flags *Flags, config *Config, getenv func(string) string) (*fmp.Client, error) {
	key, err := apiKey(flags, config, getenv)
	if err != nil {
		return nil, err
	}
	cfg := fmp.Config{
		APIKey:  key,
		Format:  fmp.Format(config.Format),
		Dir:     config.Dir,
		BaseURL: config.URL,
	}
	if flags.Format != "" {
		cfg.Format = fmp.Format(flags.Format)
	}
	if flags.Dir != "" {
		cfg.Dir = flags.Dir
	}
	if flags.URL != "" {
		cfg.BaseURL = flags.URL
	}
	return fmp.NewClient(cfg)
}

type endpoint struct {
	file      string // persisted file name prefix, as the client names it
	perSymbol bool
	call      func(ctx context.Context, c *fmp.Client, flags *Flags, symbol string) (*fmp.Result, error)
}

func bySymbol(file string, f func(ctx context.Context, c *fmp.Client, flags *Flags, symbol string) (*fmp.Result, error)) endpoint {
	return endpoint{file: file, perSymbol: true, call: f}
}

func withPeriod(file string, f func(*fmp.Client) func(context.Context, string, fmp.Period) (*fmp.Result, error)) endpoint {
	return bySymbol(file, func(ctx context.Context, c *fmp.Client, flags *Flags, s string) (*fmp.Result, error) {
		return f(c)(ctx, s, fmp.Period{Period: flags.Period, Limit: flags.Limit})
	})
}

var endpoints = map[string]endpoint{
	"quote-short": bySymbol("quote-short", func(ctx context.Context, c *fmp.Client, _ *Flags, s string) (*fmp.Result, error) {
		return c.QuoteShort(ctx, s)
	}),
	"quote": bySymbol("quote", func(ctx context.Context, c *fmp.Client, _ *Flags, s string) (*fmp.Result, error) {
		return c.Quote(ctx, s)
	}),
	"index-quote": bySymbol("quote", func(ctx context.Context, c *fmp.Client, _ *Flags, s string) (*fmp.Result, error) {
		return c.IndexQuote(ctx, s)
	}),
	"historical-chart": bySymbol("historical-chart", func(ctx context.Context, c *fmp.Client, f *Flags, s string) (*fmp.Result, error) {
		return c.HistoricalChart(ctx, f.Interval, s)
	}),
	"historical-chart-index": bySymbol("historical-chart", func(ctx context.Context, c *fmp.Client, f *Flags, s string) (*fmp.Result, error) {
		return c.HistoricalChartIndex(ctx, f.Interval, s)
	}),
	"historical-price": bySymbol("historical-price-full", func(ctx context.Context, c *fmp.Client, f *Flags, s string) (*fmp.Result, error) {
		if f.From.IsZero() && f.To.IsZero() {
			return c.HistoricalPrice(ctx, s)
		}
		return c.HistoricalPriceFull(ctx, s, f.From, f.To)
	}),
	"key-metrics": withPeriod("key-metrics", func(c *fmp.Client) func(context.Context, string, fmp.Period) (*fmp.Result, error) {
		return c.KeyMetrics
	}),
	"financial-growth": withPeriod("financial-growth", func(c *fmp.Client) func(context.Context, string, fmp.Period) (*fmp.Result, error) {
		return c.FinancialGrowth
	}),
	"enterprise-values": withPeriod("enterprise-values", func(c *fmp.Client) func(context.Context, string, fmp.Period) (*fmp.Result, error) {
		return c.EnterpriseValues
	}),
	"income-statement": withPeriod("income-statement", func(c *fmp.Client) func(context.Context, string, fmp.Period) (*fmp.Result, error) {
		return c.IncomeStatement
	}),
	"balance-sheet-statement": withPeriod("balance-sheet-statement", func(c *fmp.Client) func(context.Context, string, fmp.Period) (*fmp.Result, error) {
		return c.BalanceSheetStatement
	}),
	"cash-flow-statement": withPeriod("cash-flow-statement", func(c *fmp.Client) func(context.Context, string, fmp.Period) (*fmp.Result, error) {
		return c.CashFlowStatement
	}),
	"analyst-estimates": withPeriod("analyst-estimates", func(c *fmp.Client) func(context.Context, string, fmp.Period) (*fmp.Result, error) {
		return c.AnalystEstimates
	}),
	"rating": bySymbol("rating", func(ctx context.Context, c *fmp.Client, f *Flags, s string) (*fmp.Result, error) {
		return c.Rating(ctx, s, f.Limit)
	}),
	"historical-rating": bySymbol("historical-rating", func(ctx context.Context, c *fmp.Client, f *Flags, s string) (*fmp.Result, error) {
		return c.HistoricalRating(ctx, s, f.Limit)
	}),
	"earning-calendar": bySymbol("historical/earning_calendar", func(ctx context.Context, c *fmp.Client, f *Flags, s string) (*fmp.Result, error) {
		return c.HistoricalEarningCalendar(ctx, s, f.Limit)
	}),
	"earning-call-transcript": bySymbol("earning_call_transcript", func(ctx context.Context, c *fmp.Client, f *Flags, s string) (*fmp.Result, error) {
		return c.EarningCallTranscript(ctx, s, f.Quarter, f.Year)
	}),
	"next-earnings-estimate": bySymbol("analyst-estimates-next-earnings-call", func(ctx context.Context, c *fmp.Client, _ *Flags, s string) (*fmp.Result, error) {
		return c.AnalystEstimatesForNextEarningsCall(ctx, s)
	}),
	"symbol-lists": {file: "financial-statement-symbol-lists", call: func(ctx context.Context, c *fmp.Client, _ *Flags, _ string) (*fmp.Result, error) {
		return c.FinancialStatementSymbolLists(ctx)
	}},
	"sp500": {file: "sp500_constituent", call: func(ctx context.Context, c *fmp.Client, _ *Flags, _ string) (*fmp.Result, error) {
		return c.SP500Constituent(ctx)
	}},
}

func endpointNames() []string {
	names := make([]string, 0, len(endpoints))
	for n := range endpoints {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

type symbolResult struct {
	index int
	table *table.Table
	err   error
}

func lookupEndpoint(name string) (endpoint, error) {
	e, ok := endpoints[name]
	if !ok {
		return endpoint{}, errors.Reason("unknown endpoint '%s'; expected one of: %s",
			name, strings.Join(endpointNames(), ", "))
	}
	return e, nil
}

// fetchTable calls the endpoint for each symbol, in parallel, and concatenates
// the results in the order of the symbols. The client comes from the context.
func fetchTable(ctx context.Context, flags *Flags) (*table.Table, error) {
	c := fmp.GetClient(ctx)
	if c == nil {
		return nil, errors.Reason("no FMP client in context")
	}
	e, err := lookupEndpoint(flags.Endpoint)
	if err != nil {
		return nil, err
	}
	if !e.perSymbol {
		res, err := e.call(ctx, c, flags, "")
		if err != nil {
			return nil, errors.Annotate(err, "failed to fetch %s", flags.Endpoint)
		}
		return res.Table, nil
	}
	if len(flags.Symbols) == 0 {
		return nil, errors.Reason("endpoint %s requires -symbols", flags.Endpoint)
	}
	indices := make([]int, len(flags.Symbols))
	for i := range indices {
		indices[i] = i
	}
	f := func(i int) symbolResult {
		res, err := e.call(ctx, c, flags, flags.Symbols[i])
		if err != nil {
			return symbolResult{index: i, err: err}
		}
		return symbolResult{index: i, table: res.Table}
	}
	pm := iterator.ParallelMap(ctx, flags.Workers, iterator.FromSlice(indices), f)
	results := iterator.Reduce[symbolResult, []symbolResult](
		pm, []symbolResult{}, func(r symbolResult, rs []symbolResult) []symbolResult {
			return append(rs, r)
		})
	slices.SortFunc(results, func(a, b symbolResult) int { return a.index - b.index })
	tables := make([]*table.Table, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return nil, errors.Annotate(r.err, "failed to fetch %s for %s",
				flags.Endpoint, flags.Symbols[r.index])
		}
		tables = append(tables, r.table)
	}
	return table.Concat(tables...), nil
}

func printTable(tbl *table.Table, flags *Flags, format fmp.Format, w io.Writer) error {
	if flags.Describe {
		tbl = stats.Describe(tbl)
	}
	if len(flags.Columns) > 0 {
		tbl = tbl.Project(flags.Columns...)
	}
	switch {
	case flags.CSV:
		if err := tbl.WriteCSV(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print CSV")
		}
	case format == fmp.FormatJSON:
		if err := tbl.WriteJSON(w); err != nil {
			return errors.Annotate(err, "failed to print JSON")
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return errors.Annotate(err, "failed to print JSON")
		}
	default:
		if err := tbl.WriteText(w, table.Params{}); err != nil {
			return errors.Annotate(err, "failed to print text")
		}
	}
	return nil
}

func run(ctx context.Context, flags *Flags, getenv func(string) string, w io.Writer) error {
	config, err := parseConfig(flags.Config)
	if err != nil {
		return errors.Annotate(err, "failed to parse config")
	}
	c, err := newClient(flags, config, getenv)
	if err != nil {
		return errors.Annotate(err, "failed to create client")
	}
	ctx = fmp.UseClient(ctx, c)
	tbl, err := fetchTable(ctx, flags)
	if err != nil {
		return err
	}
	if config.WriteToFile || flags.Write {
		if err := save(ctx, flags, tbl); err != nil {
			return err
		}
	}
	return printTable(tbl, flags, c.Config().Format, w)
}

// save persists the whole table of all the symbols into the endpoint's file.
func save(ctx context.Context, flags *Flags, tbl *table.Table) error {
	c := fmp.GetClient(ctx)
	e, err := lookupEndpoint(flags.Endpoint)
	if err != nil {
		return err
	}
	res, err := c.NewResult(tbl)
	if err != nil {
		return errors.Annotate(err, "failed to format %s", flags.Endpoint)
	}
	if _, err := c.Save(ctx, e.file, res); err != nil {
		return errors.Annotate(err, "failed to save %s", flags.Endpoint)
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

	if err := run(ctx, flags, os.Getenv, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
