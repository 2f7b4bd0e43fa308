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

package errdefs

import "errors"

var (
	ErrAlreadyRunning    = errors.New("a script is already running")
	ErrScriptNotFound    = errors.New("script not found")
	ErrSpecScriptMissing = errors.New("spec is missing a script path")
	ErrSpawn             = errors.New("could not start script")
	ErrReap              = errors.New("could not reap child process")
	ErrArgsParse         = errors.New("could not parse arguments")
	ErrScriptUnknown     = errors.New("script is not registered and no such file exists")
	ErrConfigLoad        = errors.New("could not load config")
	ErrConfigSave        = errors.New("could not save config")
	ErrConfigNotFound    = errors.New("config not found in context")
	ErrLoggerNotFound    = errors.New("logger not found in context")
	ErrInvalidFlag       = errors.New("invalid flag usage")
	ErrUnknownOutput     = errors.New("unknown output format")
	ErrTooManyArguments  = errors.New("too many arguments")
)
