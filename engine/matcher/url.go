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

package matcher

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// urlTrieNode is a trie over canonical URL token sequences; a node
// marked terminal ends a registered prefix, so a cell matches as soon
// as the walk passes through any terminal node (§4.H:
// "UrlPrefix/UrlTrie normalize inputs into the canonical token
// sequence before matching"). Both NewUrlPrefix and NewUrlTrie build
// the same structure — UrlTrie is simply the name for the case where
// many prefixes share this one trie instead of being checked one at a
// time.
type urlTrieNode struct {
	children map[string]*urlTrieNode
	terminal bool
}

func newURLTrieNode() *urlTrieNode {
	return &urlTrieNode{children: make(map[string]*urlTrieNode)}
}

func (n *urlTrieNode) insert(tokens []string) {
	cur := n
	for _, t := range tokens {
		child, ok := cur.children[t]
		if !ok {
			child = newURLTrieNode()
			cur.children[t] = child
		}
		cur = child
	}
	cur.terminal = true
}

func (n *urlTrieNode) matchPrefix(tokens []string) bool {
	cur := n
	if cur.terminal {
		return true
	}
	for _, t := range tokens {
		child, ok := cur.children[t]
		if !ok {
			return false
		}
		cur = child
		if cur.terminal {
			return true
		}
	}
	return false
}

// normalizeURL reduces a cell to its canonical token sequence: the
// host's labels in reverse (so "www.example.com" tokenizes as
// ["com","example","www"], matching a trie built with TLD-first
// ordering) followed by the path's non-empty segments. Invalid UTF-8
// yields no match rather than an error (§4.H).
func normalizeURL(cell string) ([]string, bool) {
	if !utf8.ValidString(cell) {
		return nil, false
	}
	u, err := url.Parse(strings.TrimSpace(cell))
	if err != nil {
		return nil, false
	}
	host := u.Host
	if host == "" {
		host = u.Path
		u = &url.URL{}
	}
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	var tokens []string
	labels := strings.Split(host, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		if labels[i] != "" {
			tokens = append(tokens, labels[i])
		}
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			tokens = append(tokens, seg)
		}
	}
	return tokens, true
}

func tokenizeURLPattern(pattern string) []string {
	tokens, ok := normalizeURL(pattern)
	if !ok {
		return strings.Split(pattern, "/")
	}
	return tokens
}

// NewUrlPrefix matches cells whose canonical token sequence is
// prefixed by any of prefixes.
func NewUrlPrefix(prefixes []string) *Matcher {
	root := newURLTrieNode()
	for _, p := range prefixes {
		root.insert(tokenizeURLPattern(p))
	}
	return &Matcher{kind: KindUrlPrefix, trie: root}
}

// NewUrlTrie is NewUrlPrefix under a name that reflects many prefixes
// sharing one trie walk rather than being checked individually.
func NewUrlTrie(prefixes []string) *Matcher {
	m := NewUrlPrefix(prefixes)
	m.kind = KindUrlTrie
	return m
}
