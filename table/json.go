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

package table

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/stockparfait/errors"
	"golang.org/x/exp/slices"
)

// Object is a JSON object which remembers the order of its keys.
type Object struct {
	keys   []string
	values map[string]interface{}
}

var _ json.Marshaler = &Object{}

// NewObject creates an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]interface{})}
}

// Set the value of the key. A new key goes last; an existing key keeps its
// position.
func (o *Object) Set(key string, value interface{}) *Object {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get the value of the key. The second value is false if the key is absent,
// which is different from a JSON null.
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// String value of the key, or "" if absent or not a string.
func (o *Object) String(key string) string {
	s, _ := o.values[key].(string)
	return s
}

// Keys in the order they were first set. The caller must not modify the slice.
func (o *Object) Keys() []string { return o.keys }

// Len is the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// MarshalJSON implements json.Marshaler, preserving the key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, errors.Annotate(err, "failed to marshal key '%s'", k)
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, errors.Annotate(err, "failed to marshal value of '%s'", k)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode parses a JSON document. Objects are returned as *Object, arrays as
// []interface{}, numbers as json.Number so that their text is kept intact, and
// the rest as in encoding/json.
func Decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Reason("unexpected data after the JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read JSON")
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, errors.Annotate(err, "failed to read object key")
			}
			key, ok := kt.(string)
			if !ok {
				return nil, errors.Reason("object key is not a string: %v", kt)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, errors.Annotate(err, "failed to read the value of '%s'", key)
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, errors.Annotate(err, "failed to close object")
		}
		return obj, nil
	case '[':
		arr := []interface{}{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, errors.Annotate(err, "failed to read element %d", len(arr))
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, errors.Annotate(err, "failed to close array")
		}
		return arr, nil
	}
	return nil, errors.Reason("unexpected delimiter '%v'", delim)
}

// Cell of a Record. Valid is false when the row's object did not have the
// column's key at all.
type Cell struct {
	Value interface{}
	Valid bool
}

// String representation of the cell value for CSV and text output.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	js, err := json.Marshal(c.Value)
	if err != nil {
		return "?"
	}
	return string(js)
}

// Float value of a numeric cell. The second value is false for non-numeric
// or invalid cells.
func (c Cell) Float() (float64, bool) {
	if !c.Valid {
		return 0, false
	}
	switch v := c.Value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	}
	return 0, false
}

// Record is a table row aligned with the table header.
type Record []Cell

var _ Row = Record{}

// CSV implements Row.
func (r Record) CSV() []string {
	res := make([]string, len(r))
	for i, c := range r {
		res[i] = c.String()
	}
	return res
}

// FromObjects creates a table with a Record per object. The header is the
// union of the object keys in the order of their first appearance.
func FromObjects(objects ...*Object) *Table {
	var header []string
	seen := make(map[string]bool)
	for _, o := range objects {
		for _, k := range o.Keys() {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	t := NewTable(header...)
	for _, o := range objects {
		rec := make(Record, len(header))
		for i, h := range header {
			if v, ok := o.Get(h); ok {
				rec[i] = Cell{Value: v, Valid: true}
			}
		}
		t.AddRow(rec)
	}
	return t
}

// Objects converts the rows back to JSON objects with the keys in the header
// order. Invalid cells are skipped. Rows other than Record contribute their
// CSV strings.
func (t *Table) Objects() []*Object {
	res := make([]*Object, 0, len(t.Rows))
	for _, r := range t.Rows {
		o := NewObject()
		if rec, ok := r.(Record); ok {
			for i, c := range rec {
				if c.Valid && i < len(t.Header) {
					o.Set(t.Header[i], c.Value)
				}
			}
		} else {
			for i, s := range r.CSV() {
				if i < len(t.Header) {
					o.Set(t.Header[i], s)
				}
			}
		}
		res = append(res, o)
	}
	return res
}

// WriteJSON writes the table as a JSON array of objects, one per row. An
// empty table is written as {}.
func (t *Table) WriteJSON(w io.Writer) error {
	if len(t.Rows) == 0 {
		_, err := io.WriteString(w, "{}")
		return err
	}
	js, err := json.Marshal(t.Objects())
	if err != nil {
		return errors.Annotate(err, "failed to marshal table rows")
	}
	if _, err := w.Write(js); err != nil {
		return errors.Annotate(err, "failed to write JSON")
	}
	return nil
}

// JSON is WriteJSON into a string.
func (t *Table) JSON() (string, error) {
	var buf bytes.Buffer
	if err := t.WriteJSON(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Concat joins the rows of several tables. The header is the union of the
// headers in the order of their first appearance.
func Concat(tables ...*Table) *Table {
	var objects []*Object
	for _, t := range tables {
		if t != nil {
			objects = append(objects, t.Objects()...)
		}
	}
	return FromObjects(objects...)
}

// Project keeps only the named columns, in the given order. Unknown names are
// ignored.
func (t *Table) Project(columns ...string) *Table {
	var header []string
	var idx []int
	for _, c := range columns {
		if i := t.Column(c); i >= 0 && !slices.Contains(header, c) {
			header = append(header, c)
			idx = append(idx, i)
		}
	}
	res := NewTable(header...)
	for _, r := range t.Rows {
		rec, ok := r.(Record)
		if !ok {
			rec = make(Record, len(t.Header))
			for i, s := range r.CSV() {
				if i < len(rec) {
					rec[i] = Cell{Value: s, Valid: true}
				}
			}
		}
		row := make(Record, len(idx))
		for j, i := range idx {
			if i < len(rec) {
				row[j] = rec[i]
			}
		}
		res.AddRow(row)
	}
	return res
}
