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

// Package fmp implements a client for the Financial Modeling Prep (FMP) REST
// API.
//
// Official documentation is at https://site.financialmodelingprep.com/developer/docs .
//
// Every endpoint method follows the same pipeline: build the URL (see package
// request), fetch it, reshape the JSON response into a table, and optionally
// persist the result into a file named by the endpoint and the client's
// creation date. The result carries the table and, when the client is
// configured for JSON output, the table re-serialized as a JSON array of
// objects.
//
// Each endpoint declares the shape of its response: a list of objects or a
// historical price series nested under a symbol. A response that does not
// match the declared shape is an error.
//
// The transport retries a failed request exactly once after a fixed delay.
// All the errors returned by the Client methods are of type *Error.
package fmp
