// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stats implements the per-column streaming statistics kernel
// (component F): count/type inference, running numeric moments, lex
// extremes, and optional frequency and quantile tracking, with an
// associative-commutative merge for the parallel multi-file driver
// (§4.F).
package stats

import (
	"sort"
	"unicode/utf8"

	"github.com/dolthub/go-tabular-engine/engine/counter"
	"github.com/dolthub/go-tabular-engine/engine/value"
)

// typeRank orders the three observable cell types so "the most likely
// type" for a mixed column is the most general one actually needed:
// integer if every cell parsed as an integer, float if any cell needed
// a float, string as soon as any cell couldn't parse numerically at
// all.
const (
	typeInteger = "integer"
	typeFloat   = "float"
	typeString  = "string"
)

func typeRank(t string) int {
	switch t {
	case typeInteger:
		return 0
	case typeFloat:
		return 1
	default:
		return 2
	}
}

// Options selects which optional, more expensive tracking a Column
// performs: frequency tracking (cardinality/mode/tied_for_mode) and
// the numeric backing vector quartiles need.
type Options struct {
	IncludeNulls bool
	Frequencies  bool
	Numbers      bool
}

// Column accumulates statistics for a single header field across a
// stream of cell values.
type Column struct {
	field string
	opts  Options

	count      int64
	countEmpty int64
	typesSeen  map[string]bool

	sum  float64
	sumC float64
	mean float64
	m2   float64
	nNum int64

	hasNum bool
	minNum value.Number
	maxNum value.Number

	hasLex   bool
	lexFirst string
	lexLast  string

	hasLen bool
	minLen int
	maxLen int

	freq    *counter.ExactCounter
	numbers []float64
}

// NewColumn returns an empty column tracker for field under opts.
func NewColumn(field string, opts Options) *Column {
	c := &Column{field: field, opts: opts, typesSeen: make(map[string]bool)}
	if opts.Frequencies {
		c.freq = counter.NewExact()
	}
	return c
}

// classify returns the inferred type of a non-empty cell: integer if
// it parses whole, float if it parses as a decimal, string otherwise
// (§4.F step 2: "attempt integer parse -> float parse -> fall back to
// string").
func classify(cell string) (string, float64, bool) {
	if n, ok := parseInt(cell); ok {
		return typeInteger, float64(n), true
	}
	if f, ok := parseFloat(cell); ok {
		return typeFloat, f, true
	}
	return typeString, 0, false
}

// Update folds one cell's value into the column's running statistics.
func (c *Column) Update(cell string) {
	if cell == "" {
		c.countEmpty++
		if c.opts.IncludeNulls {
			c.addNumeric(typeInteger, 0)
		}
		return
	}
	c.count++

	kind, num, numeric := classify(cell)
	c.typesSeen[kind] = true
	if numeric {
		c.addNumeric(kind, num)
	}

	if !c.hasLex {
		c.lexFirst, c.lexLast, c.hasLex = cell, cell, true
	} else {
		if cell < c.lexFirst {
			c.lexFirst = cell
		}
		if cell > c.lexLast {
			c.lexLast = cell
		}
	}

	n := utf8.RuneCountInString(cell)
	if !c.hasLen {
		c.minLen, c.maxLen, c.hasLen = n, n, true
	} else {
		if n < c.minLen {
			c.minLen = n
		}
		if n > c.maxLen {
			c.maxLen = n
		}
	}

	if c.opts.Frequencies {
		c.freq.Inc(cell)
	}
	if c.opts.Numbers && numeric {
		c.numbers = append(c.numbers, num)
	}
}

func (c *Column) addNumeric(kind string, x float64) {
	y := x - c.sumC
	t := c.sum + y
	c.sumC = (t - c.sum) - y
	c.sum = t

	c.nNum++
	delta := x - c.mean
	c.mean += delta / float64(c.nNum)
	delta2 := x - c.mean
	c.m2 += delta * delta2

	var n value.Number
	if kind == typeInteger {
		n = value.NumberFromInt(int64(x))
	} else {
		n = value.NumberFromFloat(x)
	}
	if !c.hasNum {
		c.minNum, c.maxNum, c.hasNum = n, n, true
	} else {
		if n.Compare(c.minNum) < 0 {
			c.minNum = n
		}
		if n.Compare(c.maxNum) > 0 {
			c.maxNum = n
		}
	}
}

// Merge folds other's statistics into c: type sets union, counts add,
// moments combine via the parallel-variance formula, frequency tables
// merge key-wise, numeric backing vectors concatenate, and min/max/lex
// extremes combine element-wise (§4.F: "merge(other)").
func (c *Column) Merge(other *Column) {
	c.count += other.count
	c.countEmpty += other.countEmpty
	for t := range other.typesSeen {
		c.typesSeen[t] = true
	}

	if other.nNum > 0 {
		if c.nNum == 0 {
			c.sum, c.sumC, c.mean, c.m2, c.nNum = other.sum, other.sumC, other.mean, other.m2, other.nNum
			c.minNum, c.maxNum, c.hasNum = other.minNum, other.maxNum, true
		} else {
			na, nb := float64(c.nNum), float64(other.nNum)
			delta := other.mean - c.mean
			newCount := c.nNum + other.nNum
			c.mean = c.mean + delta*nb/float64(newCount)
			c.m2 = c.m2 + other.m2 + delta*delta*na*nb/float64(newCount)
			c.sum += other.sum
			c.nNum = newCount
			if other.minNum.Compare(c.minNum) < 0 {
				c.minNum = other.minNum
			}
			if other.maxNum.Compare(c.maxNum) > 0 {
				c.maxNum = other.maxNum
			}
		}
	}

	if other.hasLex {
		if !c.hasLex || other.lexFirst < c.lexFirst {
			c.lexFirst = other.lexFirst
		}
		if !c.hasLex || other.lexLast > c.lexLast {
			c.lexLast = other.lexLast
		}
		c.hasLex = true
	}
	if other.hasLen {
		if !c.hasLen || other.minLen < c.minLen {
			c.minLen = other.minLen
		}
		if !c.hasLen || other.maxLen > c.maxLen {
			c.maxLen = other.maxLen
		}
		c.hasLen = true
	}

	if c.opts.Frequencies && other.freq != nil {
		if c.freq == nil {
			c.freq = counter.NewExact()
		}
		c.freq.Merge(other.freq)
	}
	if c.opts.Numbers {
		c.numbers = append(c.numbers, other.numbers...)
	}
}

// Row is one finalized column's fixed-order statistics, mirroring
// §4.F's output column list. A value.None entry means that column
// wasn't requested (its tracking option was off) or doesn't apply.
type Row struct {
	Field       string
	Count       int64
	CountEmpty  int64
	Type        string
	Types       []string
	Sum         value.Value
	Mean        value.Value
	Q1          value.Value
	Median      value.Value
	Q3          value.Value
	Variance    value.Value
	Stddev      value.Value
	Min         value.Value
	Max         value.Value
	Cardinality value.Value
	Mode        value.Value
	TiedForMode value.Value
	LexFirst    string
	LexLast     string
	MinLength   int
	MaxLength   int
}

// Finalize renders the column's fixed-order output row.
func (c *Column) Finalize() Row {
	row := Row{
		Field:      c.field,
		Count:      c.count,
		CountEmpty: c.countEmpty,
		Sum:        value.None,
		Mean:       value.None,
		Q1:         value.None,
		Median:     value.None,
		Q3:         value.None,
		Variance:   value.None,
		Stddev:     value.None,
		Min:        value.None,
		Max:        value.None,
		Cardinality: value.None,
		Mode:        value.None,
		TiedForMode: value.None,
		LexFirst:    c.lexFirst,
		LexLast:     c.lexLast,
		MinLength:   c.minLen,
		MaxLength:   c.maxLen,
	}

	types := make([]string, 0, len(c.typesSeen))
	best := -1
	for t := range c.typesSeen {
		types = append(types, t)
		if r := typeRank(t); r > best {
			best = r
			row.Type = t
		}
	}
	sort.Strings(types)
	row.Types = types

	if c.nNum > 0 {
		row.Sum = value.Float(c.sum)
		row.Mean = value.Float(c.mean)
		row.Min = c.minNum.ToValue()
		row.Max = c.maxNum.ToValue()
		if c.nNum > 1 {
			row.Variance = value.Float(c.m2 / float64(c.nNum-1))
			row.Stddev = value.Float(sqrtFloat(c.m2 / float64(c.nNum-1)))
		} else {
			row.Variance = value.Float(0)
			row.Stddev = value.Float(0)
		}
	}

	if c.opts.Numbers && len(c.numbers) > 0 {
		sorted := append([]float64(nil), c.numbers...)
		sort.Float64s(sorted)
		row.Q1 = value.Float(quantile(sorted, 0.25))
		row.Median = value.Float(quantile(sorted, 0.5))
		row.Q3 = value.Float(quantile(sorted, 0.75))
	}

	if c.opts.Frequencies && c.freq != nil {
		row.Cardinality = value.Int(int64(c.freq.Cardinality()))
		if c.freq.Cardinality() > 0 {
			_, top := c.freq.IntoTotalAndTopK(c.freq.Cardinality())
			topCount := top[0].Count
			tied := 0
			for _, e := range top {
				if e.Count == topCount {
					tied++
				}
			}
			row.Mode = value.String(top[0].Key)
			row.TiedForMode = value.Int(int64(tied))
		}
	}

	return row
}

// quantile computes q (in [0,1]) over a pre-sorted slice using linear
// interpolation between the two nearest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
