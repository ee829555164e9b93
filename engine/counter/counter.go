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

package counter

// Counter is whichever of the exact or approximate implementations a
// command selected; both satisfy it, so frequency-table code can stay
// agnostic to which one it was handed.
type Counter interface {
	Insert(key string)
	TopK(k int) []Entry
}

// exactAdapter and approxAdapter let *ExactCounter and *ApproxCounter
// satisfy Counter without changing their more specific native methods
// (IntoTotalAndTopK needs the total; ApproxCounter's capacity already
// bounds k).
type exactAdapter struct{ *ExactCounter }

func (e exactAdapter) Insert(key string) { e.Inc(key) }
func (e exactAdapter) TopK(k int) []Entry {
	_, top := e.IntoTotalAndTopK(k)
	return top
}

type approxAdapter struct{ *ApproxCounter }

func (a approxAdapter) TopK(k int) []Entry {
	top := a.IntoTopK()
	if k < len(top) {
		top = top[:k]
	}
	return top
}

// AsCounter adapts c to the Counter interface.
func AsCounter(c *ExactCounter) Counter { return exactAdapter{c} }

// AsApproxCounter adapts c to the Counter interface.
func AsApproxCounter(c *ApproxCounter) Counter { return approxAdapter{c} }
