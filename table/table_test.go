// Copyright 2022 Stock Parfait

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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type TestRow struct {
	Make  string
	Model string
}

func (r TestRow) CSV() []string { return []string{r.Make, r.Model} }

func mustDecode(s string) interface{} {
	v, err := Decode([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func TestTable(t *testing.T) {
	t.Parallel()

	Convey("Table methods work", t, func() {
		t := NewTable("Make", "Model")
		headless := NewTable()

		So(t.Header, ShouldResemble, []string{"Make", "Model"})
		t.AddRow(TestRow{"Toyota", "Prius"}, TestRow{"Honda", "Clarity"})
		headless.AddRow(TestRow{"Toyota", "Prius"}, TestRow{"Honda", "Clarity"})

		Convey("AddRow worked", func() {
			So(t.Len(), ShouldEqual, 2)
			So(headless.Len(), ShouldEqual, 2)
			So(t.Column("Model"), ShouldEqual, 1)
			So(t.Column("Year"), ShouldEqual, -1)
		})

		Convey("WriteCSV", func() {
			Convey("Default Params", func() {
				var buf bytes.Buffer
				So(t.WriteCSV(&buf, Params{}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
Make,Model
Toyota,Prius
Honda,Clarity
`)
			})

			Convey("Limited rows, no header", func() {
				var buf bytes.Buffer
				So(t.WriteCSV(&buf, Params{Rows: 1, NoHeader: true}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
Toyota,Prius
`)
			})
		})

		Convey("WriteText", func() {
			Convey("Default Params", func() {
				var buf bytes.Buffer
				So(t.WriteText(&buf, Params{}), ShouldBeNil)
				So("\n"+buf.String(), ShouldEqual, `
  Make |   Model
------ | -------
Toyota |   Prius
 Honda | Clarity
`)
			})

			Convey("Limited rows and width, no header", func() {
				var buf bytes.Buffer
				So(t.WriteText(&buf, Params{Rows: 1, NoHeader: true, MaxColWidth: 4}), ShouldBeNil)
				So("\n"+buf.String(), ShouldResemble, `
To.. | Pr..
`)
			})
		})

		Convey("Non-Record rows convert to objects", func() {
			js, err := t.JSON()
			So(err, ShouldBeNil)
			So(js, ShouldEqual,
				`[{"Make":"Toyota","Model":"Prius"},{"Make":"Honda","Model":"Clarity"}]`)
		})
	})

	Convey("Decode keeps the key order and number text", t, func() {
		v := mustDecode(`{"z": 1.50, "a": [1, "x", null, true], "m": {"k": 2}}`)
		obj, ok := v.(*Object)
		So(ok, ShouldBeTrue)
		So(obj.Keys(), ShouldResemble, []string{"z", "a", "m"})
		z, _ := obj.Get("z")
		So(z, ShouldEqual, json.Number("1.50"))
		a, _ := obj.Get("a")
		So(a, ShouldResemble, []interface{}{json.Number("1"), "x", nil, true})
		js, err := json.Marshal(obj)
		So(err, ShouldBeNil)
		So(string(js), ShouldEqual, `{"z":1.50,"a":[1,"x",null,true],"m":{"k":2}}`)

		Convey("rejects malformed documents", func() {
			_, err := Decode([]byte(`{"a": 1`))
			So(err, ShouldNotBeNil)
			_, err = Decode([]byte(`[1] [2]`))
			So(err, ShouldNotBeNil)
			_, err = Decode([]byte(``))
			So(err, ShouldNotBeNil)
		})

		Convey("duplicate keys overwrite in place", func() {
			obj := mustDecode(`{"a": 1, "b": 2, "a": 3}`).(*Object)
			So(obj.Keys(), ShouldResemble, []string{"a", "b"})
			a, _ := obj.Get("a")
			So(a, ShouldEqual, json.Number("3"))
		})
	})

	Convey("FromObjects", t, func() {
		o1 := mustDecode(`{"symbol": "AAPL", "price": 150.5, "note": null}`).(*Object)
		o2 := mustDecode(`{"symbol": "MSFT", "volume": 1000, "price": 300}`).(*Object)
		tbl := FromObjects(o1, o2)

		Convey("infers the columns", func() {
			So(tbl.Header, ShouldResemble, []string{"symbol", "price", "note", "volume"})
			So(tbl.Len(), ShouldEqual, 2)
		})

		Convey("writes CSV with absent and null cells empty", func() {
			var buf bytes.Buffer
			So(tbl.WriteCSV(&buf, Params{}), ShouldBeNil)
			So("\n"+buf.String(), ShouldEqual, `
symbol,price,note,volume
AAPL,150.5,,
MSFT,300,,1000
`)
		})

		Convey("round trip keeps keys and primitive values", func() {
			js, err := tbl.JSON()
			So(err, ShouldBeNil)
			So(js, ShouldEqual,
				`[{"symbol":"AAPL","price":150.5,"note":null},{"symbol":"MSFT","price":300,"volume":1000}]`)

			var orig, back []map[string]interface{}
			So(json.Unmarshal([]byte(`[{"symbol": "AAPL", "price": 150.5, "note": null},
				{"symbol": "MSFT", "volume": 1000, "price": 300}]`), &orig), ShouldBeNil)
			So(json.Unmarshal([]byte(js), &back), ShouldBeNil)
			So(back, ShouldResemble, orig)
		})

		Convey("empty table is an empty object", func() {
			js, err := FromObjects().JSON()
			So(err, ShouldBeNil)
			So(js, ShouldEqual, "{}")
		})

		Convey("nested values print as JSON", func() {
			o := mustDecode(`{"a": {"b": [1, 2]}}`).(*Object)
			So(FromObjects(o).Rows[0].CSV(), ShouldResemble, []string{`{"b":[1,2]}`})
		})

		Convey("Float", func() {
			rec := tbl.Rows[0].(Record)
			f, ok := rec[1].Float()
			So(ok, ShouldBeTrue)
			So(f, ShouldEqual, 150.5)
			_, ok = rec[0].Float()
			So(ok, ShouldBeFalse)
			_, ok = rec[3].Float()
			So(ok, ShouldBeFalse)
		})

		Convey("Concat and Project", func() {
			o3 := mustDecode(`{"symbol": "IBM", "beta": 0.7}`).(*Object)
			all := Concat(tbl, FromObjects(o3))
			So(all.Header, ShouldResemble, []string{"symbol", "price", "note", "volume", "beta"})
			So(all.Len(), ShouldEqual, 3)

			p := all.Project("beta", "symbol", "unknown")
			So(p.Header, ShouldResemble, []string{"beta", "symbol"})
			So(p.Rows[2].CSV(), ShouldResemble, []string{"0.7", "IBM"})
			So(p.Rows[0].CSV(), ShouldResemble, []string{"", "AAPL"})
		})
	})
}
