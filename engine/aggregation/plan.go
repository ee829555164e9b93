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

// Package aggregation implements the aggregation planner & executor
// (component E): a comma-separated list of aggregation expressions
// compiles to a set of shared reducers and a named output projection,
// with grouped-mode and parallel-merge support (§4.E).
package aggregation

import (
	"math"
	"strings"

	"github.com/dolthub/go-tabular-engine/engine/function"
	"github.com/dolthub/go-tabular-engine/engine/lang"
	"github.com/dolthub/go-tabular-engine/engine/plan"
	"github.com/dolthub/go-tabular-engine/engine/value"
	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// aggKind names one of the supported aggregation functions.
type aggKind uint8

const (
	kindSum aggKind = iota
	kindMean
	kindCount
	kindMin
	kindMax
	kindVariance
	kindStddev
)

var aggKindNames = map[string]aggKind{
	"sum":      kindSum,
	"mean":     kindMean,
	"count":    kindCount,
	"min":      kindMin,
	"max":      kindMax,
	"variance": kindVariance,
	"stddev":   kindStddev,
}

func isMomentKind(k aggKind) bool {
	switch k {
	case kindSum, kindMean, kindMin, kindMax, kindVariance, kindStddev:
		return true
	default:
		return false
	}
}

// planStep is one unique (compiled inner expression, reducer) pair.
// Several outputs may point at the same step when they were compiled
// from the same inner expression and share a reducer family, e.g.
// "sum(x) as s, mean(x) as m" (§4.E: "share state").
type planStep struct {
	compiled function.Compiled
	newAcc   func() accumulator
	acc      accumulator
}

// outSpec is one named output column, reading a finalized value out
// of its step's accumulator.
type outSpec struct {
	name string
	step int
	kind aggKind
}

// Plan is a compiled, executable aggregation plan: its steps are
// evaluated once per row (Update), and its outputs are read at the
// end via Finalize.
type Plan struct {
	steps   []*planStep
	outputs []outSpec
}

// Compile parses a comma-separated list of aggregation clauses
// (each "expr as name", with "as name" optional) against header,
// binding any bare identifiers not in reserved as column references.
func Compile(src string, header plan.Header, reserved []string, registry *function.Registry) (*Plan, error) {
	clauses, err := splitTopLevel(src, ',')
	if err != nil {
		return nil, err
	}
	if len(clauses) == 0 {
		return nil, xerrors.ErrParse.New(src)
	}

	p := &Plan{}
	stepIndex := make(map[string]int)

	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		exprSrc, outName, err := splitAs(clause)
		if err != nil {
			return nil, err
		}

		kind, innerSrc, err := parseAggClause(exprSrc)
		if err != nil {
			return nil, err
		}
		if outName == "" {
			outName = exprSrc
		}

		family := "count"
		if isMomentKind(kind) {
			family = "moment"
		}
		key := family + "|" + innerSrc

		idx, ok := stepIndex[key]
		if !ok {
			compiled, err := compileInner(innerSrc, header, reserved, registry)
			if err != nil {
				return nil, err
			}
			var newAcc func() accumulator
			if family == "moment" {
				newAcc = func() accumulator { return newMomentAccumulator() }
			} else {
				newAcc = func() accumulator { return &countAccumulator{} }
			}
			idx = len(p.steps)
			p.steps = append(p.steps, &planStep{compiled: compiled, newAcc: newAcc, acc: newAcc()})
			stepIndex[key] = idx
		}

		p.outputs = append(p.outputs, outSpec{name: outName, step: idx, kind: kind})
	}

	return p, nil
}

// parseAggClause recognizes "kind(inner)" or bare "kind" (count only,
// meaning "count every row") and returns the aggregation kind and the
// source text of the inner expression (empty for bare count).
func parseAggClause(src string) (aggKind, string, error) {
	open := strings.IndexByte(src, '(')
	if open < 0 {
		kind, ok := aggKindNames[strings.TrimSpace(src)]
		if !ok || kind != kindCount {
			return 0, "", xerrors.ErrUnknownFunction.New(src)
		}
		return kindCount, "true", nil
	}
	if !strings.HasSuffix(src, ")") {
		return 0, "", xerrors.ErrParse.New(src)
	}
	name := strings.TrimSpace(src[:open])
	kind, ok := aggKindNames[name]
	if !ok {
		return 0, "", xerrors.ErrUnknownFunction.New(name)
	}
	inner := strings.TrimSpace(src[open+1 : len(src)-1])
	if inner == "" {
		inner = "true"
	}
	return kind, inner, nil
}

func compileInner(src string, header plan.Header, reserved []string, registry *function.Registry) (function.Compiled, error) {
	pipeline, err := lang.Parse(src)
	if err != nil {
		return nil, err
	}
	bound, err := plan.Bind(pipeline, header, reserved)
	if err != nil {
		return nil, err
	}
	return function.Compile(bound, registry)
}

// splitAs splits "expr as name" at the last top-level " as " into its
// expression and output-name parts; outName is "" when absent.
func splitAs(clause string) (exprSrc, outName string, err error) {
	depth := 0
	inString := false
	lower := strings.ToLower(clause)
	lastIdx := -1
	for i := 0; i < len(clause); i++ {
		c := clause[i]
		if inString {
			if c == '"' && (i == 0 || clause[i-1] != '\\') {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && !inString && i+4 <= len(lower) && lower[i:i+4] == " as " {
			lastIdx = i
		}
	}
	if lastIdx < 0 {
		return clause, "", nil
	}
	exprSrc = strings.TrimSpace(clause[:lastIdx])
	outName = strings.TrimSpace(clause[lastIdx+4:])
	outName = strings.Trim(outName, "\"")
	return exprSrc, outName, nil
}

// splitTopLevel splits src on sep, ignoring occurrences nested inside
// parentheses or a quoted string.
func splitTopLevel(src string, sep byte) ([]string, error) {
	var out []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inString {
			if c == '"' && (i == 0 || src[i-1] != '\\') {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, xerrors.ErrParse.New(src)
			}
		case sep:
			if depth == 0 {
				out = append(out, src[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 || inString {
		return nil, xerrors.ErrParse.New(src)
	}
	out = append(out, src[start:])
	return out, nil
}

// Update evaluates every unique step's inner expression against record
// and feeds the result into its reducer. Evaluation errors are
// returned to the caller, which applies the command's error policy
// (panic/ignore/log, §7) rather than this package deciding for it.
func (p *Plan) Update(record function.Record, vars function.Variables) error {
	for _, s := range p.steps {
		v, err := function.Evaluate(s.compiled, record, vars)
		if err != nil {
			return err
		}
		if err := s.acc.update(v); err != nil {
			return err
		}
	}
	return nil
}

// Merge folds other's accumulated state into p's, step for step. Both
// plans must have been compiled from the same source (the parallel
// multi-file driver enforces this by compiling one plan and handing
// each worker a Fresh() copy).
func (p *Plan) Merge(other *Plan) {
	for i, s := range p.steps {
		if i < len(other.steps) {
			s.acc.merge(other.steps[i].acc)
		}
	}
}

// Fresh returns a new Plan sharing this plan's compiled expressions
// (read-only) but with independently zeroed reducer state, for
// grouped-mode's "new plan instance per group key" and for handing an
// isolated accumulator to each file-parallel worker.
func (p *Plan) Fresh() *Plan {
	np := &Plan{outputs: p.outputs}
	np.steps = make([]*planStep, len(p.steps))
	for i, s := range p.steps {
		np.steps[i] = &planStep{compiled: s.compiled, newAcc: s.newAcc, acc: s.newAcc()}
	}
	return np
}

// Clear resets every step's reducer state without discarding the
// compiled expressions or reallocating the step slice (§4.E: "clear()
// resets per-row-group state without reallocation").
func (p *Plan) Clear() {
	for _, s := range p.steps {
		s.acc = s.newAcc()
	}
}

// Names returns the output columns in declaration order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.outputs))
	for i, o := range p.outputs {
		names[i] = o.name
	}
	return names
}

// Finalize reads every output's value out of its (possibly shared)
// accumulator. parallel is threaded through so a future
// order-sensitive reducer can refuse or fall back to a deterministic
// tie-break instead of an arrival-order-dependent one; every reducer
// currently supported is associative-commutative and ignores it.
func (p *Plan) Finalize(parallel bool) []value.Value {
	out := make([]value.Value, len(p.outputs))
	for i, o := range p.outputs {
		out[i] = finalizeOutput(p.steps[o.step].acc, o.kind)
	}
	return out
}

func finalizeOutput(acc accumulator, kind aggKind) value.Value {
	switch kind {
	case kindCount:
		c, ok := acc.(*countAccumulator)
		if !ok {
			return value.None
		}
		return value.Int(c.n)
	}

	m, ok := acc.(*momentAccumulator)
	if !ok || m.count == 0 {
		return value.None
	}
	switch kind {
	case kindSum:
		return value.Float(m.sum)
	case kindMean:
		return value.Float(m.mean)
	case kindMin:
		return m.min.ToValue()
	case kindMax:
		return m.max.ToValue()
	case kindVariance:
		return value.Float(m.variance())
	case kindStddev:
		return value.Float(math.Sqrt(m.variance()))
	default:
		return value.None
	}
}
