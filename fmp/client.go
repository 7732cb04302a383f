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
	"fmt"
	"net/http"
	"time"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/marketdata/db"
	"github.com/stockparfait/marketdata/request"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// DefaultRetryDelay is the wait before the only retry of a failed request.
const DefaultRetryDelay = 30 * time.Second

// Format of the results.
type Format string

const (
	FormatJSON  = Format("json")
	FormatTable = Format("table")
)

// ParseFormat checks the format name. An empty name is FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatTable:
		return FormatTable, nil
	}
	return "", errors.Reason("unknown output format '%s', expected json or table", s)
}

// Error is the only kind of error returned by the Client methods. It is used
// for transport failures, invalid arguments and unexpected responses alike.
type Error struct {
	Op         string // the Client method which failed
	Msg        string
	URL        string // the requested URL, if a request was made
	StatusCode int    // HTTP status of the last attempt; 0 if there was none
}

var _ error = &Error{}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func newError(op string, err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Op: op, Msg: err.Error()}
}

// Config of the Client. Only APIKey is required.
type Config struct {
	APIKey      string        // your very own secret key
	Format      Format        // default: FormatJSON
	WriteToFile bool          // persist each result into a file
	Dir         string        // where to persist; default: current directory
	BaseURL     string        // default: request.URL
	RetryDelay  time.Duration // default: DefaultRetryDelay
	HTTPClient  *http.Client  // default: http.DefaultClient
	Now         func() time.Time
}

// Client for querying the FMP API. It holds no mutable state after creation.
type Client struct {
	config Config
	writer *db.Writer
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewClient validates the config, fills in the defaults and creates a new
// client. The current date for the persisted file names is fixed here.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, &Error{Op: "NewClient", Msg: "API key is required"}
	}
	format, err := ParseFormat(string(config.Format))
	if err != nil {
		return nil, newError("NewClient", err)
	}
	config.Format = format
	if config.BaseURL == "" {
		config.BaseURL = request.URL
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Client{
		config: config,
		writer: db.NewWriter(config.Dir, db.NewDateFromTime(config.Now())),
		sleep:  sleep,
	}, nil
}

// Config returns a copy of the client's config with the defaults filled in.
func (c *Client) Config() Config { return c.config }

// CurrentDay is the client's creation date used in the persisted file names.
func (c *Client) CurrentDay() db.Date { return c.writer.Date }

// today is the local date at the time of the call.
func (c *Client) today() db.Date {
	return db.NewDateFromTime(c.config.Now())
}

// builder starts a request with the client's key and base URL.
func (c *Client) builder() *request.Builder {
	return request.New(c.config.APIKey).Base(c.config.BaseURL)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// UseClient injects the client into the context.
func UseClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientContextKey, c)
}
