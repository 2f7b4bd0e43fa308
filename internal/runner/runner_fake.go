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

package runner

import "github.com/mstolarz/launchpad/pkg/api"

// RunnerTest is a func-field fake for collaborator tests. Unset fields
// behave as an idle runner.
type RunnerTest struct {
	StartFunc       func(spec *api.LaunchSpec) error
	StopFunc        func()
	IsRunningFunc   func() bool
	StateFunc       func() api.RunnerState
	DrainOutputFunc func() string
}

func (r *RunnerTest) Start(spec *api.LaunchSpec) error {
	if r.StartFunc != nil {
		return r.StartFunc(spec)
	}
	return nil
}

func (r *RunnerTest) Stop() {
	if r.StopFunc != nil {
		r.StopFunc()
	}
}

func (r *RunnerTest) IsRunning() bool {
	if r.IsRunningFunc != nil {
		return r.IsRunningFunc()
	}
	return false
}

func (r *RunnerTest) State() api.RunnerState {
	if r.StateFunc != nil {
		return r.StateFunc()
	}
	return api.RunnerIdle
}

func (r *RunnerTest) DrainOutput() string {
	if r.DrainOutputFunc != nil {
		return r.DrainOutputFunc()
	}
	return ""
}
