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

// Package request builds the URLs of the Financial Modeling Prep API.
//
// A URL has the form
//
//	{base}/v{version}/{category}/{subcategory1}/{subcategory2}?{query}&apikey={key}
//
// where category names the endpoint, e.g. "quote" or "income-statement", and
// the subcategories are typically a ticker symbol or a time interval. The
// category is not validated: an unknown one simply yields a URL the server
// rejects.
package request

import (
	"fmt"
	"net/url"
	"strings"
)

// URL is the default base URL of the server. It may be overwritten in tests
// before creating a new builder.
var URL = "https://financialmodelingprep.com/api"

// DefaultVersion of the API.
const DefaultVersion = 3

type param struct {
	Key   string
	Value string
}

// Builder for a request URL. All the builder methods create a copy, leaving
// the receiver intact.
type Builder struct {
	base          string
	version       int
	apiKey        string
	category      string
	subcategories []string
	params        []param // in insertion order, unique keys
}

// New creates a builder for the API version 3 with the default base URL.
func New(apiKey string) *Builder {
	return &Builder{base: URL, version: DefaultVersion, apiKey: apiKey}
}

// Copy creates a deep copy of the builder.
func (b *Builder) Copy() *Builder {
	b2 := *b
	b2.subcategories = append([]string(nil), b.subcategories...)
	b2.params = append([]param(nil), b.params...)
	return &b2
}

// Base sets the base URL, without the version.
func (b *Builder) Base(base string) *Builder {
	b2 := b.Copy()
	b2.base = strings.TrimRight(base, "/")
	return b2
}

// Version sets the API version, 3 or 4.
func (b *Builder) Version(v int) *Builder {
	b2 := b.Copy()
	b2.version = v
	return b2
}

// Category sets the endpoint category. It may contain '/', e.g.
// "historical/earning_calendar", and is used verbatim.
func (b *Builder) Category(category string) *Builder {
	b2 := b.Copy()
	b2.category = category
	return b2
}

// SubCategory appends path segments after the category. Each segment is
// escaped.
func (b *Builder) SubCategory(segments ...string) *Builder {
	b2 := b.Copy()
	b2.subcategories = append(b2.subcategories, segments...)
	return b2
}

// Query adds a query parameter. A repeated key overwrites the previous value.
func (b *Builder) Query(key string, value interface{}) *Builder {
	b2 := b.Copy()
	v := fmt.Sprint(value)
	for i := range b2.params {
		if b2.params[i].Key == key {
			b2.params[i].Value = v
			return b2
		}
	}
	b2.params = append(b2.params, param{Key: key, Value: v})
	return b2
}

// APIVersion returns the configured version.
func (b *Builder) APIVersion() int { return b.version }

// Path returns the URL path after the base URL, e.g. "/v3/quote/AAPL".
func (b *Builder) Path() string {
	segments := []string{fmt.Sprintf("v%d", b.version)}
	if b.category != "" {
		segments = append(segments, b.category)
	}
	for _, s := range b.subcategories {
		segments = append(segments, url.PathEscape(s))
	}
	return "/" + strings.Join(segments, "/")
}

// Values returns the query values including the API key. Each call creates a
// new object, so the caller is free to modify it.
func (b *Builder) Values() url.Values {
	v := make(url.Values)
	for _, p := range b.params {
		v.Set(p.Key, p.Value)
	}
	v.Set("apikey", b.apiKey)
	return v
}

// URL compiles the request into the final URL string. The query parameters
// follow in the order they were added, and the API key is always last.
func (b *Builder) URL() string {
	var sb strings.Builder
	sb.WriteString(b.base)
	sb.WriteString(b.Path())
	sb.WriteByte('?')
	for _, p := range b.params {
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
		sb.WriteByte('&')
	}
	sb.WriteString("apikey=")
	sb.WriteString(url.QueryEscape(b.apiKey))
	return sb.String()
}

// Redact replaces the value of every API key in the string with REDACTED. The
// string may be a URL or a message quoting one, e.g. a *url.Error text.
func Redact(s string) string {
	const key = "apikey="
	var sb strings.Builder
	for {
		i := strings.Index(s, key)
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i+len(key)])
		sb.WriteString("REDACTED")
		s = s[i+len(key):]
		if j := strings.IndexAny(s, "&#\"' \t\n"); j >= 0 {
			s = s[j:]
		} else {
			s = ""
		}
	}
}
