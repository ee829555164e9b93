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

// Package matcher implements the unified search matcher (component
// H): a single contract (IsMatch/Count/Replace) backed by whichever
// concrete matching strategy best fits the pattern set — plain
// substring search via Aho-Corasick, single or multi-pattern regex,
// an exact hash-set, or URL-prefix matching (§4.H).
package matcher

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// Kind tags which concrete strategy a Matcher was built with.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNonEmpty
	KindSubstring
	KindExact
	KindRegex
	KindRegexes
	KindRegexSet
	KindHashSet
	KindUrlPrefix
	KindUrlTrie
)

// Matcher is the engine's unified search contract. Every constructor
// in this package returns a *Matcher already configured for its kind.
type Matcher struct {
	kind     Kind
	caseFold bool

	substr *ahocorasick.Automaton
	single *regexp.Regexp
	multi  []*regexp.Regexp
	set    map[string]struct{}
	trie   *urlTrieNode
}

// NewEmpty matches cells that are the empty string.
func NewEmpty() *Matcher { return &Matcher{kind: KindEmpty} }

// NewNonEmpty matches cells that are not the empty string.
func NewNonEmpty() *Matcher { return &Matcher{kind: KindNonEmpty} }

// NewExact matches cells equal to pattern, case-folded when caseFold
// is set — the pattern itself is pre-lowercased at build time so
// per-cell matching never re-lowercases it (§4.H).
func NewExact(pattern string, caseFold bool) *Matcher {
	if caseFold {
		pattern = strings.ToLower(pattern)
	}
	return &Matcher{kind: KindExact, caseFold: caseFold, single: nil, set: map[string]struct{}{pattern: {}}}
}

// NewHashSet matches cells present in patterns, as a set rather than a
// single value.
func NewHashSet(patterns []string, caseFold bool) *Matcher {
	set := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		if caseFold {
			p = strings.ToLower(p)
		}
		set[p] = struct{}{}
	}
	return &Matcher{kind: KindHashSet, caseFold: caseFold, set: set}
}

// NewSubstring builds a multi-pattern substring matcher over an
// Aho-Corasick automaton; patterns are pre-lowercased when caseFold is
// set so IsMatch/Count never re-lowercase the pattern set per cell.
func NewSubstring(patterns []string, caseFold bool) (*Matcher, error) {
	prepared := make([]string, len(patterns))
	for i, p := range patterns {
		if caseFold {
			p = strings.ToLower(p)
		}
		prepared[i] = p
	}
	automaton, err := ahocorasick.NewAutomaton(prepared)
	if err != nil {
		return nil, err
	}
	return &Matcher{kind: KindSubstring, caseFold: caseFold, substr: automaton}, nil
}

// NewRegex builds a single-pattern regex matcher, used for IsMatch,
// overlapping Count, and Replace.
func NewRegex(pattern string, caseFold bool) (*Matcher, error) {
	re, err := compileRegex(pattern, caseFold)
	if err != nil {
		return nil, err
	}
	return &Matcher{kind: KindRegex, caseFold: caseFold, single: re}, nil
}

// NewRegexes builds one compiled regex per pattern, used only for
// overlapping counting: one manual-scan pass per pattern (§4.H).
func NewRegexes(patterns []string, caseFold bool) (*Matcher, error) {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := compileRegex(p, caseFold)
		if err != nil {
			return nil, err
		}
		res[i] = re
	}
	return &Matcher{kind: KindRegexes, caseFold: caseFold, multi: res}, nil
}

// NewRegexSet builds an alternation of patterns for non-overlapping
// counting and boolean matching — Go's regexp has no native RegexSet,
// so the set is modeled as a single alternation regex, which gives the
// same "does any pattern match, how many non-overlapping times"
// semantics RegexSet provides (§4.H).
func NewRegexSet(patterns []string, caseFold bool) (*Matcher, error) {
	quoted := make([]string, len(patterns))
	for i, p := range patterns {
		quoted[i] = "(?:" + p + ")"
	}
	re, err := compileRegex(strings.Join(quoted, "|"), caseFold)
	if err != nil {
		return nil, err
	}
	return &Matcher{kind: KindRegexSet, caseFold: caseFold, single: re}, nil
}

func compileRegex(pattern string, caseFold bool) (*regexp.Regexp, error) {
	if caseFold {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, xerrors.ErrParse.New(pattern)
	}
	return re, nil
}

// fold lower-cases cell the same Unicode-aware way pattern build time
// does, when the matcher was built case-insensitive.
func (m *Matcher) fold(cell string) string {
	if m.caseFold {
		return strings.ToLower(cell)
	}
	return cell
}

// IsMatch reports whether cell matches at least once.
func (m *Matcher) IsMatch(cell string) bool {
	switch m.kind {
	case KindEmpty:
		return cell == ""
	case KindNonEmpty:
		return cell != ""
	case KindExact:
		_, ok := m.set[m.fold(cell)]
		return ok
	case KindHashSet:
		_, ok := m.set[m.fold(cell)]
		return ok
	case KindSubstring:
		return len(m.substr.Find([]byte(m.fold(cell)))) > 0
	case KindRegex, KindRegexSet:
		return m.single.MatchString(cell)
	case KindRegexes:
		for _, re := range m.multi {
			if re.MatchString(cell) {
				return true
			}
		}
		return false
	case KindUrlPrefix, KindUrlTrie:
		tokens, ok := normalizeURL(cell)
		if !ok {
			return false
		}
		return m.trie.matchPrefix(tokens)
	default:
		return false
	}
}

// Count returns the number of matches in cell. When overlapping is
// true, matches may share bytes (a manual scan advancing one byte
// past each zero-width match, the match's end otherwise); when false,
// matches are counted left to right, non-overlapping (§4.H).
func (m *Matcher) Count(cell string, overlapping bool) int {
	switch m.kind {
	case KindEmpty:
		if cell == "" {
			return 1
		}
		return 0
	case KindNonEmpty:
		if cell != "" {
			return 1
		}
		return 0
	case KindExact, KindHashSet:
		if m.IsMatch(cell) {
			return 1
		}
		return 0
	case KindSubstring:
		return countSubstring(m.substr, m.fold(cell), overlapping)
	case KindRegex:
		if overlapping {
			return countOverlapping(m.single, cell)
		}
		return len(m.single.FindAllStringIndex(cell, -1))
	case KindRegexSet:
		return len(m.single.FindAllStringIndex(cell, -1))
	case KindRegexes:
		if !overlapping {
			// RegexSet is the non-overlapping vehicle (§4.H); Regexes
			// exists only for the overlapping case, but degrade
			// gracefully rather than refusing.
			total := 0
			for _, re := range m.multi {
				total += len(re.FindAllStringIndex(cell, -1))
			}
			return total
		}
		total := 0
		for _, re := range m.multi {
			total += countOverlapping(re, cell)
		}
		return total
	default:
		if m.IsMatch(cell) {
			return 1
		}
		return 0
	}
}

// countOverlapping implements the manual scan: after each match it
// advances one byte past the match start for a zero-width match, or
// to the match's end otherwise, so a zero-width match never stalls
// the scan; two non-empty matches counted this way never share bytes
// (§4.H).
func countOverlapping(re *regexp.Regexp, cell string) int {
	count := 0
	pos := 0
	for pos <= len(cell) {
		loc := re.FindStringIndex(cell[pos:])
		if loc == nil {
			break
		}
		count++
		if loc[0] == loc[1] {
			pos += loc[0] + 1
		} else {
			pos += loc[1]
		}
	}
	return count
}

func countSubstring(a *ahocorasick.Automaton, cell string, overlapping bool) int {
	matches := a.Find([]byte(cell))
	if overlapping {
		return len(matches)
	}
	count := 0
	nextAllowed := 0
	for _, mt := range matches {
		if mt.Start < nextAllowed {
			continue
		}
		count++
		nextAllowed = mt.End
	}
	return count
}

// Replace replaces every match in cell with with. Regex uses the
// engine's own replacement; Substring uses a multi-pattern
// replace-all; set-typed matchers (Exact/HashSet/UrlPrefix/UrlTrie)
// don't support replacement, matching §4.H's contract.
func (m *Matcher) Replace(cell string, with string) ([]byte, error) {
	switch m.kind {
	case KindRegex, KindRegexSet:
		return []byte(m.single.ReplaceAllString(cell, with)), nil
	case KindSubstring:
		return replaceSubstring(m.substr, cell, with), nil
	default:
		return nil, xerrors.ErrUsage.New("replace is not supported for this matcher kind")
	}
}

func replaceSubstring(a *ahocorasick.Automaton, cell, with string) []byte {
	matches := a.Find([]byte(cell))
	if len(matches) == 0 {
		return []byte(cell)
	}
	var out bytes.Buffer
	pos := 0
	for _, mt := range matches {
		if mt.Start < pos {
			continue
		}
		out.WriteString(cell[pos:mt.Start])
		out.WriteString(with)
		pos = mt.End
	}
	out.WriteString(cell[pos:])
	return out.Bytes()
}
