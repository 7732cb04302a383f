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

package db

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDB(t *testing.T) {
	t.Parallel()
	tmpdir, tmpdirErr := os.MkdirTemp("", "testdb")
	defer os.RemoveAll(tmpdir)

	Convey("Test setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("Lexicographic ordering works correctly", t, func() {
		So(lessLex([]int{1, 2}, []int{1, 2, 0}), ShouldBeTrue)
		So(lessLex([]int{1, 2, 0}, []int{1, 2}), ShouldBeFalse)
		So(lessLex([]int{1, 2}, []int{1, 2}), ShouldBeFalse)
		So(lessLex([]int{1, 2, 3}, []int{1, 3, 2}), ShouldBeTrue)
	})

	Convey("Date type", t, func() {
		Convey("parses API date strings", func() {
			d, err := NewDateFromString("2023-02-03")
			So(err, ShouldBeNil)
			So(d, ShouldResemble, NewDate(2023, 2, 3))

			d, err = NewDateFromString("2023-02-03 15:30:00")
			So(err, ShouldBeNil)
			So(d, ShouldResemble, NewDate(2023, 2, 3))

			_, err = NewDateFromString("02/03/2023")
			So(err, ShouldNotBeNil)
		})

		Convey("converts from time in its location", func() {
			loc := time.FixedZone("test", -5*3600)
			tm := time.Date(2023, time.March, 1, 22, 0, 0, 0, loc)
			So(NewDateFromTime(tm).String(), ShouldEqual, "2023-03-01")
		})

		Convey("compares the dates correctly", func() {
			So(NewDate(2019, 10, 15).After(NewDate(2018, 11, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 11, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 10, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 10, 15)), ShouldBeFalse)
			So(NewDate(2019, 10, 15).After(NewDate(2019, 10, 5)), ShouldBeTrue)
		})
	})

	Convey("Writer", t, func() {
		w := NewWriter(filepath.Join(tmpdir, "out"), NewDate(2023, 4, 5))

		Convey("names files by endpoint and date", func() {
			So(w.FileName("quote", "json"), ShouldEqual, "quote_2023-04-05.json")
			So(w.FileName("historical/earning_calendar", "csv"), ShouldEqual,
				"historical_earning_calendar_2023-04-05.csv")
		})

		Convey("writes and overwrites the file", func() {
			path, err := w.Write("quote", "json", func(out io.Writer) error {
				_, err := fmt.Fprint(out, "first version")
				return err
			})
			So(err, ShouldBeNil)
			So(path, ShouldEqual, filepath.Join(tmpdir, "out", "quote_2023-04-05.json"))

			_, err = w.Write("quote", "json", func(out io.Writer) error {
				_, err := fmt.Fprint(out, "[]")
				return err
			})
			So(err, ShouldBeNil)
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "[]")
		})

		Convey("reports the write error", func() {
			_, err := w.Write("rating", "csv", func(out io.Writer) error {
				return fmt.Errorf("test failure")
			})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "test failure")
		})
	})
}
