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

package request

import (
	"net/url"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRequest(t *testing.T) {
	t.Parallel()

	Convey("Builder builds nondestructively", t, func() {
		b := New("key").Base("https://test.host/api")
		b2 := b.Category("quote").SubCategory("AAPL")
		b3 := b2.Query("limit", 5)
		So(b.URL(), ShouldEqual, "https://test.host/api/v3?apikey=key")
		So(b2.URL(), ShouldEqual, "https://test.host/api/v3/quote/AAPL?apikey=key")
		So(b3.URL(), ShouldEqual, "https://test.host/api/v3/quote/AAPL?limit=5&apikey=key")
		So(b2.Values(), ShouldResemble, url.Values{"apikey": {"key"}})
	})

	Convey("URL composition", t, func() {
		b := New("secret").Base("https://test.host/api/")

		Convey("all categories put the symbol right after the category", func() {
			for _, c := range []string{
				"key-metrics", "financial-growth", "enterprise-values",
				"income-statement", "analyst-estimates", "historical/earning_calendar",
			} {
				u := b.Category(c).SubCategory("IBM").Query("period", "quarter").
					Query("limit", 4).URL()
				parsed, err := url.Parse(u)
				So(err, ShouldBeNil)
				So(parsed.Path, ShouldEqual, "/api/v3/"+c+"/IBM")
				So(parsed.Query(), ShouldResemble, url.Values{
					"period": {"quarter"},
					"limit":  {"4"},
					"apikey": {"secret"},
				})
			}
		})

		Convey("omitted parameters never appear", func() {
			u := b.Category("rating").SubCategory("IBM").URL()
			So(u, ShouldEqual, "https://test.host/api/v3/rating/IBM?apikey=secret")
			So(strings.Contains(u, "limit"), ShouldBeFalse)
			So(strings.Contains(u, "period"), ShouldBeFalse)
		})

		Convey("several subcategories keep their order", func() {
			b2 := b.Category("historical-chart").SubCategory("1hour").SubCategory("^GSPC")
			So(b2.Path(), ShouldEqual, "/v3/historical-chart/1hour/%5EGSPC")
		})

		Convey("duplicate keys overwrite", func() {
			u := b.Category("income-statement").Query("limit", 1).Query("period", "annual").
				Query("limit", 10).URL()
			So(u, ShouldEqual,
				"https://test.host/api/v3/income-statement?limit=10&period=annual&apikey=secret")
		})

		Convey("version 4 with query only", func() {
			b4 := b.Version(4).Category("earning_call_transcript").Query("symbol", "AAPL").
				Query("quarter", 3).Query("year", 2020)
			So(b4.APIVersion(), ShouldEqual, 4)
			So(b4.URL(), ShouldEqual,
				"https://test.host/api/v4/earning_call_transcript?symbol=AAPL&quarter=3&year=2020&apikey=secret")
			So(b4.Values(), ShouldResemble, url.Values{
				"symbol": {"AAPL"}, "quarter": {"3"}, "year": {"2020"}, "apikey": {"secret"}})
		})

		Convey("query values are escaped", func() {
			u := b.Category("search").Query("query", "a&b c").URL()
			So(u, ShouldEqual, "https://test.host/api/v3/search?query=a%26b+c&apikey=secret")
		})
	})

	Convey("Redact hides the key", t, func() {
		So(Redact("https://h/v3/quote/A?limit=1&apikey=secret"), ShouldEqual,
			"https://h/v3/quote/A?limit=1&apikey=REDACTED")
		So(Redact("https://h/v3/quote/A?apikey=secret&x=1"), ShouldEqual,
			"https://h/v3/quote/A?apikey=REDACTED&x=1")
		So(Redact("https://h/v3/quote/A"), ShouldEqual, "https://h/v3/quote/A")
		So(Redact(`Get "https://h/v3/quote/A?apikey=secret": dial tcp: refused`),
			ShouldEqual, `Get "https://h/v3/quote/A?apikey=REDACTED": dial tcp: refused`)
		So(Redact("a?apikey=one b?apikey=two"), ShouldEqual,
			"a?apikey=REDACTED b?apikey=REDACTED")
	})
}
