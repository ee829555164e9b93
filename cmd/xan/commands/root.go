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

// Package commands wires the engine's core subsystems into cobra
// subcommands: filter, agg, stats, freq, search, count and cat. Each command
// parses its flags, builds the relevant engine component, and drives
// csvio readers/writers; the subsystems themselves (engine/*,
// rowpar, parallel) carry all the actual logic.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/dolthub/go-tabular-engine/config"
)

var (
	flagDelimiter string
	flagNoHeader  bool
	flagCaseFold  bool
	flagOutput    string
	flagThreads   int
)

// Root returns the xan CLI's root command with every subcommand
// registered.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "xan",
		Short: "A CSV/TSV data-processing toolkit",
	}

	root.PersistentFlags().StringVar(&flagDelimiter, "delimiter", ",", "field delimiter")
	root.PersistentFlags().BoolVar(&flagNoHeader, "no-header", false, "treat the first row as data, not a header")
	root.PersistentFlags().BoolVar(&flagCaseFold, "case-fold", false, "case-insensitive matching where applicable")
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "-", "output path (\"-\" for stdout)")
	root.PersistentFlags().IntVarP(&flagThreads, "threads", "t", 0, "worker count (0 = cores)")

	root.AddCommand(filterCmd())
	root.AddCommand(aggCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(freqCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(countCmd())
	root.AddCommand(catCmd())

	return root
}

func currentConfig() config.Config {
	cfg := config.Default()
	if flagDelimiter != "" {
		cfg.Delimiter = flagDelimiter
	}
	cfg.CaseFold = flagCaseFold
	if flagThreads > 0 {
		cfg.Threads = flagThreads
	}
	return cfg
}
