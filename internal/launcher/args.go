// Copyright 2025 Marek Stolarz (mstolarz)
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
//
// SPDX-License-Identifier: Apache-2.0

package launcher

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/mstolarz/launchpad/internal/errdefs"
)

// TokenizeArgs splits a freeform argument string into separate tokens the way
// a shell would, so the child receives "--flag value" as two arguments.
// Quoting is respected. An empty or blank string yields no tokens.
func TokenizeArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	tokens, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrArgsParse, err)
	}
	return tokens, nil
}
