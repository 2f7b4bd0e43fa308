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

// Package config manages the launchpad JSON configuration file: the script
// registry, the default interpreter and the log tail size. A missing or
// unparsable file is replaced with defaults so the application always starts.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mstolarz/launchpad/internal/errdefs"
	"github.com/spf13/viper"
)

const (
	KeyScripts     = "scripts"
	KeyInterpreter = "interpreter"
	KeyLogMaxLines = "log_max_lines"

	DefaultInterpreter = "/bin/sh"
	DefaultLogMaxLines = 1000

	// EnvConfigFile overrides the config file location.
	EnvConfigFile = "LAUNCHPAD_CONFIG"
)

const CtxConfig = CtxConfigType("config")

type CtxConfigType string

type Config struct {
	v    *viper.Viper
	path string

	// scripts is kept out of viper: viper lowercases map keys on both Set
	// and ReadInConfig, and script names are case-sensitive.
	scripts map[string]string
}

// configFile is the on-disk shape of the config document.
type configFile struct {
	Interpreter string            `json:"interpreter"`
	LogMaxLines int               `json:"log_max_lines"`
	Scripts     map[string]string `json:"scripts"`
}

func DefaultConfigFile() string {
	base, err := os.UserHomeDir()
	if err != nil {
		// fallback to tmp if home dir cannot be determined
		base = "/tmp/launchpad"
	}
	return filepath.Join(base, ".launchpad", "config.json")
}

// Load reads the config file at path, creating it with defaults when it does
// not exist. An unparsable file is rewritten with defaults rather than
// aborting the launcher.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault(KeyInterpreter, DefaultInterpreter)
	v.SetDefault(KeyLogMaxLines, DefaultLogMaxLines)

	c := &Config{v: v, path: path, scripts: map[string]string{}}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if errW := c.Save(); errW != nil {
				return nil, fmt.Errorf("%w: %w", errdefs.ErrConfigLoad, errW)
			}
			return c, nil
		}

		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			// keep going with defaults, same as on first run
			if errW := c.Save(); errW != nil {
				return nil, fmt.Errorf("%w: %w", errdefs.ErrConfigLoad, errW)
			}
			return c, nil
		}

		return nil, fmt.Errorf("%w: %w", errdefs.ErrConfigLoad, err)
	}

	// reread the registry straight from the file so names keep their case
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrConfigLoad, err)
	}
	var doc configFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", errdefs.ErrConfigLoad, err)
	}
	if doc.Scripts != nil {
		c.scripts = doc.Scripts
	}

	return c, nil
}

// FromContext returns the config installed by the root command.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(CtxConfig).(*Config)
	if !ok || cfg == nil {
		return nil, errdefs.ErrConfigNotFound
	}
	return cfg, nil
}

func (c *Config) Path() string {
	return c.path
}

// Save writes the document with encoding/json rather than viper's writer,
// which would lowercase the registry names.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrConfigSave, err)
	}
	doc := configFile{
		Interpreter: c.Interpreter(),
		LogMaxLines: c.LogMaxLines(),
		Scripts:     c.scripts,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrConfigSave, err)
	}
	if err := os.WriteFile(c.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("%w: %w", errdefs.ErrConfigSave, err)
	}
	return nil
}

// Scripts returns a copy of the registry as a name -> path map.
func (c *Config) Scripts() map[string]string {
	out := make(map[string]string, len(c.scripts))
	for name, path := range c.scripts {
		out[name] = path
	}
	return out
}

// Script resolves a registered script name to its path.
func (c *Config) Script(name string) (string, bool) {
	path, ok := c.scripts[name]
	return path, ok
}

func (c *Config) SetScript(name, path string) {
	c.scripts[name] = path
}

func (c *Config) RemoveScript(name string) bool {
	if _, ok := c.scripts[name]; !ok {
		return false
	}
	delete(c.scripts, name)
	return true
}

func (c *Config) Interpreter() string {
	return c.v.GetString(KeyInterpreter)
}

func (c *Config) SetInterpreter(path string) {
	c.v.Set(KeyInterpreter, path)
}

func (c *Config) LogMaxLines() int {
	n := c.v.GetInt(KeyLogMaxLines)
	if n <= 0 {
		return DefaultLogMaxLines
	}
	return n
}
