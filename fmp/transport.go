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
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
	"github.com/stockparfait/marketdata/request"
)

// getOnce performs a single GET. It succeeds only on HTTP 200 with a body
// which parses as JSON. The status is 0 when no response was received.
func (c *Client) getOnce(ctx context.Context, uri string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, 0, errors.Reason("failed to create request: %s", request.Redact(err.Error()))
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		// The error text quotes the URL with the key.
		return nil, 0, errors.Reason("request failed: %s", request.Redact(err.Error()))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Annotate(err, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, errors.Reason("HTTP status %d (%s)",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if !json.Valid(body) {
		return nil, resp.StatusCode, errors.Reason("response body is not valid JSON")
	}
	return body, resp.StatusCode, nil
}

// doRequest fetches the URL compiled from the builder. A failed attempt is
// retried exactly once after the configured delay.
func (c *Client) doRequest(ctx context.Context, op string, b *request.Builder) ([]byte, error) {
	uri := b.URL()
	redacted := request.Redact(uri)
	logging.Infof(ctx, "FMP: fetching %s", redacted)

	body, status, err := c.getOnce(ctx, uri)
	if err == nil {
		return body, nil
	}
	logging.Warningf(ctx, "FMP: %s failed: %s; retrying in %s",
		redacted, err.Error(), c.config.RetryDelay)
	if err := c.sleep(ctx, c.config.RetryDelay); err != nil {
		return nil, &Error{
			Op:         op,
			Msg:        fmt.Sprintf("url: %s: retry cancelled: %s", redacted, err.Error()),
			URL:        uri,
			StatusCode: status,
		}
	}
	body, status, err = c.getOnce(ctx, uri)
	if err != nil {
		return nil, &Error{
			Op:         op,
			Msg:        fmt.Sprintf("url: %s returned %d: %s", redacted, status, err.Error()),
			URL:        uri,
			StatusCode: status,
		}
	}
	return body, nil
}
