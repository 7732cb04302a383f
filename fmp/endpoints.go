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

package fmp

import (
	"context"

	"github.com/stockparfait/marketdata/db"
	"github.com/stockparfait/marketdata/request"

	"k8s.io/apimachinery/pkg/util/sets"
)

// IndexPrefix turns a symbol into a market index symbol, e.g. ^GSPC.
const IndexPrefix = "^"

var validIntervals = sets.New("1min", "5min", "15min", "30min", "1hour", "4hour")

// IsValidInterval checks the interval of the intraday charts.
func IsValidInterval(interval string) bool {
	return validIntervals.Has(interval)
}

// Intervals lists the valid intervals in ascending order of length.
func Intervals() []string {
	return []string{"1min", "5min", "15min", "30min", "1hour", "4hour"}
}

// Period selects the reporting period and the number of reports of the
// fundamentals endpoints. Zero values are not sent.
type Period struct {
	Period string // "annual" or "quarter"
	Limit  int
}

func (p Period) apply(b *request.Builder) *request.Builder {
	if p.Period != "" {
		b = b.Query("period", p.Period)
	}
	return limit(b, p.Limit)
}

func limit(b *request.Builder, n int) *request.Builder {
	if n != 0 {
		b = b.Query("limit", n)
	}
	return b
}

// call runs the whole pipeline for a simple endpoint: fetch, format, persist.
func (c *Client) call(ctx context.Context, op string, shape Shape, b *request.Builder, endpoint string) (*Result, error) {
	res, err := c.fetch(ctx, op, shape, b)
	if err != nil {
		return nil, err
	}
	return c.persist(ctx, op, endpoint, res)
}

// QuoteShort is the price and volume of the symbol.
func (c *Client) QuoteShort(ctx context.Context, symbol string) (*Result, error) {
	b := c.builder().Category("quote-short").SubCategory(symbol)
	return c.call(ctx, "QuoteShort", ShapeList, b, "quote-short")
}

// Quote is the full quote of the symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*Result, error) {
	b := c.builder().Category("quote").SubCategory(symbol)
	return c.call(ctx, "Quote", ShapeList, b, "quote")
}

// IndexQuote is the quote of a market index, e.g. "GSPC" for S&P 500.
func (c *Client) IndexQuote(ctx context.Context, symbol string) (*Result, error) {
	return c.Quote(ctx, IndexPrefix+symbol)
}

// HistoricalChart is the intraday price chart of the symbol. The interval is
// validated before any request is made.
func (c *Client) HistoricalChart(ctx context.Context, interval, symbol string) (*Result, error) {
	const op = "HistoricalChart"
	if !IsValidInterval(interval) {
		return nil, &Error{Op: op, Msg: "Interval value is not valid: '" + interval + "'"}
	}
	b := c.builder().Category("historical-chart").SubCategory(interval, symbol)
	return c.call(ctx, op, ShapeList, b, "historical-chart")
}

// HistoricalChartIndex is the intraday price chart of a market index.
func (c *Client) HistoricalChartIndex(ctx context.Context, interval, symbol string) (*Result, error) {
	return c.HistoricalChart(ctx, interval, IndexPrefix+symbol)
}

// HistoricalPrice is the daily price history of the symbol, one row per date.
func (c *Client) HistoricalPrice(ctx context.Context, symbol string) (*Result, error) {
	b := c.builder().Category("historical-price-full").SubCategory(symbol)
	return c.call(ctx, "HistoricalPrice", ShapeHistorical, b, "historical-price-full")
}

// HistoricalPriceFull is the daily price history in the inclusive date range.
// A zero date leaves that end of the range open.
func (c *Client) HistoricalPriceFull(ctx context.Context, symbol string, from, to db.Date) (*Result, error) {
	b := c.builder().Category("historical-price-full").SubCategory(symbol)
	if !from.IsZero() {
		b = b.Query("from", from.String())
	}
	if !to.IsZero() {
		b = b.Query("to", to.String())
	}
	return c.call(ctx, "HistoricalPriceFull", ShapeHistorical, b, "historical-price-full")
}

// KeyMetrics of the company's financial reports.
func (c *Client) KeyMetrics(ctx context.Context, symbol string, p Period) (*Result, error) {
	b := p.apply(c.builder().Category("key-metrics").SubCategory(symbol))
	return c.call(ctx, "KeyMetrics", ShapeList, b, "key-metrics")
}

// FinancialGrowth of the company's financial statements.
func (c *Client) FinancialGrowth(ctx context.Context, symbol string, p Period) (*Result, error) {
	b := p.apply(c.builder().Category("financial-growth").SubCategory(symbol))
	return c.call(ctx, "FinancialGrowth", ShapeList, b, "financial-growth")
}

// EnterpriseValues of the company.
func (c *Client) EnterpriseValues(ctx context.Context, symbol string, p Period) (*Result, error) {
	b := p.apply(c.builder().Category("enterprise-values").SubCategory(symbol))
	return c.call(ctx, "EnterpriseValues", ShapeList, b, "enterprise-values")
}

// Rating of the company. The endpoint has no period.
func (c *Client) Rating(ctx context.Context, symbol string, n int) (*Result, error) {
	b := limit(c.builder().Category("rating").SubCategory(symbol), n)
	return c.call(ctx, "Rating", ShapeList, b, "rating")
}

// HistoricalRating of the company, most recent first.
func (c *Client) HistoricalRating(ctx context.Context, symbol string, n int) (*Result, error) {
	b := limit(c.builder().Category("historical-rating").SubCategory(symbol), n)
	return c.call(ctx, "HistoricalRating", ShapeList, b, "historical-rating")
}

// FinancialStatementSymbolLists lists all the symbols with financial
// statements.
func (c *Client) FinancialStatementSymbolLists(ctx context.Context) (*Result, error) {
	b := c.builder().Category("financial-statement-symbol-lists")
	return c.call(ctx, "FinancialStatementSymbolLists", ShapeList, b,
		"financial-statement-symbol-lists")
}

// SP500Constituent lists the current S&P 500 companies.
func (c *Client) SP500Constituent(ctx context.Context) (*Result, error) {
	b := c.builder().Category("sp500_constituent")
	return c.call(ctx, "SP500Constituent", ShapeList, b, "sp500_constituent")
}

// IncomeStatement of the company.
func (c *Client) IncomeStatement(ctx context.Context, symbol string, p Period) (*Result, error) {
	b := p.apply(c.builder().Category("income-statement").SubCategory(symbol))
	return c.call(ctx, "IncomeStatement", ShapeList, b, "income-statement")
}

// BalanceSheetStatement of the company.
func (c *Client) BalanceSheetStatement(ctx context.Context, symbol string, p Period) (*Result, error) {
	b := p.apply(c.builder().Category("balance-sheet-statement").SubCategory(symbol))
	return c.call(ctx, "BalanceSheetStatement", ShapeList, b, "balance-sheet-statement")
}

// CashFlowStatement of the company.
func (c *Client) CashFlowStatement(ctx context.Context, symbol string, p Period) (*Result, error) {
	b := p.apply(c.builder().Category("cash-flow-statement").SubCategory(symbol))
	return c.call(ctx, "CashFlowStatement", ShapeList, b, "cash-flow-statement")
}

// HistoricalEarningCalendar lists the past and the next earnings dates.
func (c *Client) HistoricalEarningCalendar(ctx context.Context, symbol string, n int) (*Result, error) {
	b := limit(c.builder().Category("historical/earning_calendar").SubCategory(symbol), n)
	return c.call(ctx, "HistoricalEarningCalendar", ShapeList, b, "historical/earning_calendar")
}

// EarningCallTranscript is served by the API v4. Empty quarter or year are
// not sent.
func (c *Client) EarningCallTranscript(ctx context.Context, symbol, quarter, year string) (*Result, error) {
	b := c.builder().Version(4).Category("earning_call_transcript").Query("symbol", symbol)
	if quarter != "" {
		b = b.Query("quarter", quarter)
	}
	if year != "" {
		b = b.Query("year", year)
	}
	return c.call(ctx, "EarningCallTranscript", ShapeList, b, "earning_call_transcript")
}

// AnalystEstimates of the company's revenue, earnings, etc.
func (c *Client) AnalystEstimates(ctx context.Context, symbol string, p Period) (*Result, error) {
	b := p.apply(c.builder().Category("analyst-estimates").SubCategory(symbol))
	return c.call(ctx, "AnalystEstimates", ShapeList, b, "analyst-estimates")
}
