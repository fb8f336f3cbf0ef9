/*
Copyright 2025 The llm-d Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package corpus

import (
	"fmt"
	"slices"
)

const defaultIDWidth = 8

// Config holds the configuration of a token store.
type Config struct {
	// OutputPath is the path prefix of the store files.
	OutputPath string `json:"outputPath"`
	// Reuse loads existing store files instead of rebuilding them.
	Reuse bool `json:"reuse"`
	// IDWidth is the size in bytes of a stored token id: 2, 4 or 8.
	// Ids are signed.
	IDWidth int `json:"idWidth"`
}

// DefaultConfig returns a configuration reusing stores of 8-byte ids.
func DefaultConfig() *Config {
	return &Config{
		Reuse:   true,
		IDWidth: defaultIDWidth,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.OutputPath == "" {
		return fmt.Errorf("%w: empty output path", ErrConfiguration)
	}
	return validateWidth(c.IDWidth)
}

func validateWidth(width int) error {
	if !slices.Contains([]int{2, 4, 8}, width) {
		return fmt.Errorf("%w: id width %d is not one of 2, 4 or 8", ErrConfiguration, width)
	}
	return nil
}
