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
	"github.com/stockparfait/errors"
	"github.com/stockparfait/marketdata/table"
)

// Shape of an endpoint's JSON response.
type Shape int

const (
	// ShapeList is a JSON array of objects, one row each.
	ShapeList Shape = iota
	// ShapeHistorical is a daily price series nested under its symbol:
	//
	//	{"symbol": "AAPL", "historical": [{"date": ...}, ...]}
	//
	// or several of them in {"historicalStockList": [...]}. An empty object
	// means no data.
	ShapeHistorical
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeHistorical:
		return "historical"
	}
	return "unknown"
}

// apiError extracts the error message the server sends in place of data, if
// any.
func apiError(v interface{}) (string, bool) {
	obj, ok := v.(*table.Object)
	if !ok {
		return "", false
	}
	for _, k := range []string{"Error Message", "error"} {
		if s := obj.String(k); s != "" {
			return s, true
		}
	}
	return "", false
}

func toObjects(v interface{}) ([]*table.Object, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, errors.Reason("expected a JSON array, got %T", v)
	}
	res := make([]*table.Object, len(arr))
	for i, el := range arr {
		obj, ok := el.(*table.Object)
		if !ok {
			return nil, errors.Reason("element %d is not a JSON object: %T", i, el)
		}
		res[i] = obj
	}
	return res, nil
}

// historicalRows flattens one {symbol, historical} series. The symbol becomes
// the first column of each row.
func historicalRows(series *table.Object) ([]*table.Object, error) {
	h, ok := series.Get("historical")
	if !ok {
		return nil, errors.Reason("missing 'historical' field")
	}
	days, err := toObjects(h)
	if err != nil {
		return nil, errors.Annotate(err, "bad 'historical' field")
	}
	symbol, hasSymbol := series.Get("symbol")
	res := make([]*table.Object, len(days))
	for i, d := range days {
		row := table.NewObject()
		if hasSymbol {
			row.Set("symbol", symbol)
		}
		for _, k := range d.Keys() {
			v, _ := d.Get(k)
			row.Set(k, v)
		}
		res[i] = row
	}
	return res, nil
}

// Rows validates a decoded response (see table.Decode) against the shape and
// returns the table rows.
func (s Shape) Rows(v interface{}) ([]*table.Object, error) {
	if msg, ok := apiError(v); ok {
		return nil, errors.Reason("API error: %s", msg)
	}
	switch s {
	case ShapeList:
		return toObjects(v)
	case ShapeHistorical:
		obj, ok := v.(*table.Object)
		if !ok {
			return nil, errors.Reason("expected a JSON object, got %T", v)
		}
		if obj.Len() == 0 {
			return nil, nil
		}
		if list, ok := obj.Get("historicalStockList"); ok {
			all, err := toObjects(list)
			if err != nil {
				return nil, errors.Annotate(err, "bad 'historicalStockList' field")
			}
			var res []*table.Object
			for _, series := range all {
				rows, err := historicalRows(series)
				if err != nil {
					return nil, errors.Annotate(err, "failed to read series for %s",
						series.String("symbol"))
				}
				res = append(res, rows...)
			}
			return res, nil
		}
		return historicalRows(obj)
	}
	return nil, errors.Reason("unsupported response shape %d", int(s))
}
