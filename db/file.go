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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stockparfait/errors"
)

// Writer persists fetched results as one file per endpoint and date in a
// single directory.
type Writer struct {
	Dir  string // created on the first write if missing
	Date Date   // the date in the file names
}

// NewWriter creates a new Writer. An empty dir means the current directory.
func NewWriter(dir string, date Date) *Writer {
	return &Writer{Dir: dir, Date: date}
}

// FileName returns the name of the file for the endpoint with the given
// extension (without the dot), e.g. "quote_2023-01-02.json". Any '/' in the
// endpoint is replaced by '_'.
func (w *Writer) FileName(endpoint, ext string) string {
	name := strings.ReplaceAll(endpoint, "/", "_")
	return name + "_" + w.Date.String() + "." + ext
}

// Path is the full path of the file for the endpoint.
func (w *Writer) Path(endpoint, ext string) string {
	return filepath.Join(w.Dir, w.FileName(endpoint, ext))
}

// Write creates or truncates the file for the endpoint and lets write fill
// it in. It returns the path of the written file.
func (w *Writer) Write(endpoint, ext string, write func(io.Writer) error) (string, error) {
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0755); err != nil {
			return "", errors.Annotate(err, "failed to create directory '%s'", w.Dir)
		}
	}
	fileName := w.Path(endpoint, ext)
	f, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", errors.Annotate(err, "failed to open file for writing: '%s'", fileName)
	}
	defer f.Close()
	if err = write(f); err != nil {
		return "", errors.Annotate(err, "failed to write to '%s'", fileName)
	}
	return fileName, nil
}
