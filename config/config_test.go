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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultHasFailFastPolicy(t *testing.T) {
	cfg := Default()
	require.Equal(t, ",", cfg.Delimiter)
	require.Equal(t, "|", cfg.ListSeparator)
	require.Equal(t, ErrorPolicyPanic, cfg.ErrorPolicy)
	require.Greater(t, cfg.Threads, 0)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("delimiter: \";\"\ncase_fold: true\nerror_policy: ignore\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ";", cfg.Delimiter)
	require.True(t, cfg.CaseFold)
	require.Equal(t, ErrorPolicyIgnore, cfg.ErrorPolicy)
	require.Equal(t, "|", cfg.ListSeparator) // untouched field keeps its default
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
}

func TestResolveThreadsNeverExceedsPathCount(t *testing.T) {
	cfg := Config{Threads: 8}
	require.Equal(t, 3, cfg.ResolveThreads(3))
	require.Equal(t, 8, cfg.ResolveThreads(100))
}

func TestResolveThreadsFallsBackToNumCPUWhenUnset(t *testing.T) {
	cfg := Config{Threads: 0}
	require.Greater(t, cfg.ResolveThreads(1000), 0)
}

func TestDelimiterRune(t *testing.T) {
	require.Equal(t, ',', Config{}.DelimiterRune())
	require.Equal(t, ';', Config{Delimiter: ";"}.DelimiterRune())
}
