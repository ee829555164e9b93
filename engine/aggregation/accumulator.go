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

package aggregation

import "github.com/dolthub/go-tabular-engine/engine/value"

// accumulator is the reducer state backing one or more named outputs
// of an aggregation plan (§4.E). A single accumulator instance can
// back several outputs at once: sum and mean both read a
// momentAccumulator's running sum, so compiling "sum(x) as s, mean(x)
// as m" shares one accumulator between the two outputs rather than
// keeping two independent running sums.
type accumulator interface {
	update(v value.Value) error
	merge(o accumulator)
	clone() accumulator
}

// momentAccumulator tracks the running moments needed by sum, mean,
// min, max, variance and stddev over the same input expression. Sum
// uses Kahan-compensated addition and variance the Welford recurrence
// so merge (the parallel-combination formula) stays associative and
// commutative, matching what finalize(parallel=true) requires.
type momentAccumulator struct {
	count int64

	sum  float64
	sumC float64 // Kahan compensation term

	mean float64
	m2   float64 // Welford's running sum of squared deviations

	hasNum bool
	min    value.Number
	max    value.Number
}

func newMomentAccumulator() *momentAccumulator { return &momentAccumulator{} }

func (a *momentAccumulator) update(v value.Value) error {
	n, err := v.TryAsNumber()
	if err != nil {
		return err
	}
	a.addNumber(n)
	return nil
}

func (a *momentAccumulator) addNumber(n value.Number) {
	x := n.AsFloat()

	// Kahan summation: y/t/c carry the lost low-order bits forward
	// instead of letting repeated addition erode them.
	y := x - a.sumC
	t := a.sum + y
	a.sumC = (t - a.sum) - y
	a.sum = t

	a.count++
	delta := x - a.mean
	a.mean += delta / float64(a.count)
	delta2 := x - a.mean
	a.m2 += delta * delta2

	if !a.hasNum {
		a.min, a.max = n, n
		a.hasNum = true
		return
	}
	if n.Compare(a.min) < 0 {
		a.min = n
	}
	if n.Compare(a.max) > 0 {
		a.max = n
	}
}

// merge implements the parallel-combination (Chan et al.) formula for
// combining two Welford accumulators, plus Kahan-aware sum combination
// and trivial min/max combination.
func (a *momentAccumulator) merge(other accumulator) {
	o, ok := other.(*momentAccumulator)
	if !ok || o.count == 0 {
		return
	}
	if a.count == 0 {
		*a = *o
		return
	}

	na, nb := float64(a.count), float64(o.count)
	delta := o.mean - a.mean
	newCount := a.count + o.count
	newMean := a.mean + delta*nb/float64(newCount)
	newM2 := a.m2 + o.m2 + delta*delta*na*nb/float64(newCount)

	y := (o.sum - o.sumC) - a.sumC
	t := a.sum + y
	a.sumC = (t - a.sum) - y
	a.sum = t
	a.count = newCount
	a.mean = newMean
	a.m2 = newM2

	if !a.hasNum {
		a.min, a.max, a.hasNum = o.min, o.max, true
	} else if o.hasNum {
		if o.min.Compare(a.min) < 0 {
			a.min = o.min
		}
		if o.max.Compare(a.max) > 0 {
			a.max = o.max
		}
	}
}

func (a *momentAccumulator) clone() accumulator {
	cp := *a
	return &cp
}

func (a *momentAccumulator) variance() float64 {
	if a.count < 2 {
		return 0
	}
	return a.m2 / float64(a.count-1)
}

// countAccumulator counts non-None updates; it backs the `count`
// output, which is not part of the numeric moment family (a count
// column still makes sense over an all-string column).
type countAccumulator struct {
	n int64
}

func (a *countAccumulator) update(v value.Value) error {
	if !v.IsNone() {
		a.n++
	}
	return nil
}

func (a *countAccumulator) merge(other accumulator) {
	if o, ok := other.(*countAccumulator); ok {
		a.n += o.n
	}
}

func (a *countAccumulator) clone() accumulator {
	return &countAccumulator{n: a.n}
}
