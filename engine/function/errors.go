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

package function

import "github.com/dolthub/go-tabular-engine/engine/xerrors"

func arityStrictError(name string, expected, got int) error {
	return xerrors.ErrStrictArity.New(name, expected, got)
}

func arityMinError(name string, min, got int) error {
	return xerrors.ErrMinArity.New(name, min, got)
}

func arityRangeError(name string, min, max, got int) error {
	return xerrors.ErrRangeArity.New(name, min, max, got)
}
