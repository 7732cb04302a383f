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
	"io"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/request"
	"github.com/stockparfait/marketdata/table"
)

// Result of an endpoint call.
type Result struct {
	Format Format
	Table  *table.Table // always set
	JSON   string       // the Table as JSON; only set for FormatJSON
}

// Write the result in its format: JSON, or the table as text.
func (r *Result) Write(w io.Writer) error {
	if r.Format == FormatJSON {
		_, err := io.WriteString(w, r.JSON)
		return err
	}
	return r.Table.WriteText(w, table.Params{})
}

// result wraps the table according to the configured output format.
func (c *Client) result(op string, t *table.Table) (*Result, error) {
	r := &Result{Format: c.config.Format, Table: t}
	if r.Format == FormatJSON {
		js, err := t.JSON()
		if err != nil {
			return nil, newError(op, errors.Annotate(err, "failed to format JSON"))
		}
		r.JSON = js
	}
	return r, nil
}

// format reshapes the response body according to its expected shape.
func (c *Client) format(op string, shape Shape, body []byte) (*Result, error) {
	v, err := table.Decode(body)
	if err != nil {
		return nil, newError(op, errors.Annotate(err, "failed to parse response"))
	}
	rows, err := shape.Rows(v)
	if err != nil {
		return nil, newError(op, errors.Annotate(err, "unexpected %s response", shape))
	}
	return c.result(op, table.FromObjects(rows...))
}

// fetch requests the URL and formats the response.
func (c *Client) fetch(ctx context.Context, op string, shape Shape, b *request.Builder) (*Result, error) {
	body, err := c.doRequest(ctx, op, b)
	if err != nil {
		return nil, err
	}
	return c.format(op, shape, body)
}

// NewResult wraps a table in the client's output format, e.g. a
// concatenation of several results.
func (c *Client) NewResult(t *table.Table) (*Result, error) {
	return c.result("NewResult", t)
}

// Save writes the result into the endpoint's file for the client's date
// regardless of Config.WriteToFile, and returns the file path. Table results
// are written as CSV.
func (c *Client) Save(ctx context.Context, endpoint string, r *Result) (string, error) {
	ext := "csv"
	write := func(w io.Writer) error { return r.Table.WriteCSV(w, table.Params{}) }
	if r.Format == FormatJSON {
		ext = "json"
		write = func(w io.Writer) error {
			_, err := io.WriteString(w, r.JSON)
			return err
		}
	}
	path, err := c.writer.Write(endpoint, ext, write)
	if err != nil {
		return "", errors.Annotate(err, "failed to persist the result")
	}
	logging.Infof(ctx, "FMP: wrote %s", path)
	return path, nil
}

// persist saves the result if configured to. The result is returned as is,
// even when writing fails.
func (c *Client) persist(ctx context.Context, op, endpoint string, r *Result) (*Result, error) {
	if !c.config.WriteToFile {
		return r, nil
	}
	if _, err := c.Save(ctx, endpoint, r); err != nil {
		return r, newError(op, err)
	}
	return r, nil
}
