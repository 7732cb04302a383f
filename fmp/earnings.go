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

	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/db"
	"github.com/stockparfait/marketdata/table"

	"golang.org/x/exp/slices"
)

// Number of quarterly estimates to search for the next earnings call.
const nextEarningsLimit = 15

type datedObject struct {
	date db.Date
	obj  *table.Object
}

// NextEstimate selects the earliest object dated today or later, or nil if
// there is none. Objects without a valid "date" are ignored.
func NextEstimate(objs []*table.Object, today db.Date) *table.Object {
	var future []datedObject
	for _, o := range objs {
		d, err := db.NewDateFromString(o.String("date"))
		if err != nil || d.Before(today) {
			continue
		}
		future = append(future, datedObject{date: d, obj: o})
	}
	if len(future) == 0 {
		return nil
	}
	slices.SortStableFunc(future, func(a, b datedObject) int {
		switch {
		case a.date.Before(b.date):
			return -1
		case b.date.Before(a.date):
			return 1
		}
		return 0
	})
	return future[0].obj
}

// AnalystEstimatesForNextEarningsCall is the quarterly analyst estimate for
// the soonest earnings call on or after today. When there is none, the result
// is empty: "{}" in JSON, or a table with no columns.
func (c *Client) AnalystEstimatesForNextEarningsCall(ctx context.Context, symbol string) (*Result, error) {
	const op = "AnalystEstimatesForNextEarningsCall"
	b := Period{Period: "quarter", Limit: nextEarningsLimit}.apply(
		c.builder().Category("analyst-estimates").SubCategory(symbol))
	body, err := c.doRequest(ctx, op, b)
	if err != nil {
		return nil, err
	}
	v, err := table.Decode(body)
	if err != nil {
		return nil, newError(op, err)
	}
	rows, err := ShapeList.Rows(v)
	if err != nil {
		return nil, newError(op, err)
	}
	t := table.NewTable()
	if next := NextEstimate(rows, c.today()); next != nil {
		t = table.FromObjects(next)
	} else {
		logging.Infof(ctx, "FMP: no upcoming earnings estimates for %s", symbol)
	}
	res, err := c.result(op, t)
	if err != nil {
		return nil, err
	}
	return c.persist(ctx, op, "analyst-estimates-next-earnings-call", res)
}
