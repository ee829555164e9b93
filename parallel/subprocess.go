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

package parallel

import (
	"io"
	"os/exec"

	"github.com/dolthub/go-tabular-engine/engine/xerrors"
)

// Preprocessor runs a shell command whose stdout is consumed as the
// file's CSV stream instead of reading the path directly — e.g. a
// decompression or reformatting step ahead of the core loop (§4.I:
// "through a preprocessing subprocess pipeline whose stdout is
// consumed as CSV").
type Preprocessor struct {
	cmd     *exec.Cmd
	Stdout  io.ReadCloser
	stopped bool
}

// StartPreprocessor starts command with args, wiring its stdout for
// the caller to read as CSV.
func StartPreprocessor(command string, args ...string) (*Preprocessor, error) {
	cmd := exec.Command(command, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, xerrors.ErrIO.New(err.Error())
	}
	if err := cmd.Start(); err != nil {
		return nil, xerrors.ErrIO.New(err.Error())
	}
	return &Preprocessor{cmd: cmd, Stdout: stdout}, nil
}

// Guard runs fn with the preprocessor's lifecycle scope-bound: on a
// panic inside fn, the child process is killed before the panic
// re-propagates; on a normal return, the child is waited on so it
// never outlives the scope that started it (§5: "child processes are
// killed on panic and waited on normal drop").
func (p *Preprocessor) Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.kill()
			panic(r)
		}
	}()

	err = fn()
	if waitErr := p.cmd.Wait(); waitErr != nil && err == nil {
		err = xerrors.ErrIO.New(waitErr.Error())
	}
	p.stopped = true
	return err
}

func (p *Preprocessor) kill() {
	if p.stopped {
		return
	}
	p.stopped = true
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
