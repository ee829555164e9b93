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

// Package config carries the ambient, process-wide configuration the
// other packages read from: thread count, default delimiter, list
// separator, case-fold default and the evaluation error policy. It is
// read once at startup and never mutated afterwards (§5: "No global
// mutable state except the shared thread pool configured once at
// program start").
package config

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v2"

	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// ErrorPolicy names how the engine reacts to a per-row evaluation
// error (§7: "Evaluation errors are subject to a per-command policy").
type ErrorPolicy string

const (
	// ErrorPolicyPanic fails the whole run on the first evaluation
	// error.
	ErrorPolicyPanic ErrorPolicy = "panic"
	// ErrorPolicyIgnore silently drops the offending row.
	ErrorPolicyIgnore ErrorPolicy = "ignore"
	// ErrorPolicyLog reports the offending row's error and drops it.
	ErrorPolicyLog ErrorPolicy = "log"
)

// Config is the toolkit's process-wide configuration.
type Config struct {
	Threads       int         `yaml:"threads"`
	Delimiter     string      `yaml:"delimiter"`
	ListSeparator string      `yaml:"list_separator"`
	CaseFold      bool        `yaml:"case_fold"`
	ErrorPolicy   ErrorPolicy `yaml:"error_policy"`
}

// Default returns the toolkit's built-in defaults: one worker per CPU
// core, comma delimiter, "|" list separator, case-sensitive matching,
// and fail-fast evaluation errors.
func Default() Config {
	return Config{
		Threads:       runtime.NumCPU(),
		Delimiter:     ",",
		ListSeparator: "|",
		CaseFold:      false,
		ErrorPolicy:   ErrorPolicyPanic,
	}
}

// Load reads a YAML config file at path, starting from Default() and
// overriding whichever fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.ErrIO.New(err.Error())
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, xerrors.ErrIO.New(err.Error())
	}
	return cfg, nil
}

// ResolveThreads returns the effective worker count for a run over n
// input paths: never more threads than there are paths to process
// (§4.I: "thread pool sized to min(paths, configured_threads or
// cores)").
func (c Config) ResolveThreads(paths int) int {
	threads := c.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if paths > 0 && paths < threads {
		return paths
	}
	return threads
}

// DelimiterRune returns the configured delimiter as the single rune
// encoding/csv expects, defaulting to comma when unset; a value longer
// than one rune yields its first rune.
func (c Config) DelimiterRune() rune {
	if c.Delimiter == "" {
		return ','
	}
	r := []rune(c.Delimiter)
	return r[0]
}
