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

package stats

import (
	"math"

	"github.com/stockparfait/marketdata/table"
)

// DescribeHeader is the header of the Describe table.
var DescribeHeader = []string{
	"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ColumnSample collects the values of a numeric column. It returns false if
// the column is absent, has no values, or has a non-numeric value. Missing
// and null cells are skipped.
func ColumnSample(t *table.Table, column string) (*Sample, bool) {
	idx := t.Column(column)
	if idx < 0 {
		return nil, false
	}
	s := NewSample()
	for _, r := range t.Rows {
		rec, ok := r.(table.Record)
		if !ok || idx >= len(rec) {
			return nil, false
		}
		c := rec[idx]
		if !c.Valid || c.Value == nil {
			continue
		}
		x, ok := c.Float()
		if !ok {
			return nil, false
		}
		s.Add(x)
	}
	return s, s.Len() > 0
}

func cell(x float64) table.Cell {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return table.Cell{Valid: true} // null
	}
	return table.Cell{Value: x, Valid: true}
}

// Describe summarizes each numeric column of the table in a row of
// DescribeHeader. Non-numeric columns are skipped.
func Describe(t *table.Table) *table.Table {
	res := table.NewTable(DescribeHeader...)
	for _, h := range t.Header {
		s, ok := ColumnSample(t, h)
		if !ok {
			continue
		}
		res.AddRow(table.Record{
			{Value: h, Valid: true},
			cell(float64(s.Len())),
			cell(s.Mean()),
			cell(s.Std()),
			cell(s.Min()),
			cell(s.Quantile(0.25)),
			cell(s.Quantile(0.5)),
			cell(s.Quantile(0.75)),
			cell(s.Max()),
		})
	}
	return res
}
