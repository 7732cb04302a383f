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

// Package stats computes summary statistics of the numeric table columns.
package stats

import (
	"math"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample stores unordered set of numerical data (float64) and computes various
// statistics over it.
type Sample struct {
	data   []float64 // keep it private, so we correctly update caches.
	sorted []float64 // cached sorted copy of data for quantiles
}

// NewSample creates a new empty sample.
func NewSample() *Sample {
	return &Sample{}
}

// Data returns the sample data.
func (s *Sample) Data() []float64 { return s.data }

// Init sets the data in the sample to the provided slice. Note, that it reuses
// the same slice without copying. It returns self for inlined declarations.
func (s *Sample) Init(data []float64) *Sample {
	s.data = data
	s.sorted = nil
	return s
}

// Add a value to the sample.
func (s *Sample) Add(x float64) *Sample {
	s.data = append(s.data, x)
	s.sorted = nil
	return s
}

// Len is the number of samples.
func (s *Sample) Len() int { return len(s.data) }

// Mean of the Sample; NaN when empty.
func (s *Sample) Mean() float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	return stat.Mean(s.data, nil)
}

// Std is the unbiased standard deviation; NaN for fewer than two samples.
func (s *Sample) Std() float64 {
	if len(s.data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(s.data, nil)
}

// Min value; NaN when empty.
func (s *Sample) Min() float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	return floats.Min(s.data)
}

// Max value; NaN when empty.
func (s *Sample) Max() float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	return floats.Max(s.data)
}

// Quantile is the smallest sample value such that at least p fraction of the
// sample is less or equal to it. NaN when empty. The sorted data is cached.
func (s *Sample) Quantile(p float64) float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	if s.sorted == nil {
		s.sorted = slices.Clone(s.data)
		slices.Sort(s.sorted)
	}
	return stat.Quantile(math.Max(0, math.Min(1, p)), stat.Empirical, s.sorted, nil)
}
