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

// Package recipes assembles the corpus, stream and textproc packages into
// ready-made builders for monolingual and bilingual corpora, and into a
// processor that prepares raw text for a model and restores its output.
package recipes

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/llm-d/llm-d-text-corpus/pkg/corpus"
	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc/cache"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc/hftokenizer"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

// ErrConfiguration reports an invalid recipe configuration.
var ErrConfiguration = errors.New("invalid recipe configuration")

const defaultSeparator = "@@"

// PreprocessConfig selects the steps of the line pipeline. Steps run in the
// order of the fields on the way in and in reverse order on the way out.
type PreprocessConfig struct {
	// Lang is the language code used by language-dependent steps.
	Lang string `json:"lang"`
	// NormalizeBlanks collapses whitespace runs into single spaces.
	NormalizeBlanks bool `json:"normalizeBlanks"`
	// Tokenize separates punctuation from words and detokenizes on the way out.
	Tokenize bool `json:"tokenize"`
	// Recase capitalizes the first word of each line on the way out.
	Recase bool `json:"recase"`
	// Lowercase lowercases lines on the way in.
	Lowercase bool `json:"lowercase"`
	// TruecaseModel is the path of a truecasing model. Empty disables truecasing.
	TruecaseModel string `json:"truecaseModel"`
	// CharLevel splits words into characters.
	CharLevel bool `json:"charLevel"`
	// BPECodes is the path of a BPE merge file. Empty disables BPE.
	BPECodes string `json:"bpeCodes"`
	// HFModel is a HuggingFace model whose tokenizer segments words.
	// Empty disables it.
	HFModel string `json:"hfModel"`
	// Separator marks word-internal boundaries of the char-level and BPE steps.
	Separator string `json:"separator"`
}

// DefaultPreprocessConfig returns blank normalization for English.
func DefaultPreprocessConfig() *PreprocessConfig {
	return &PreprocessConfig{
		Lang:            "en",
		NormalizeBlanks: true,
		Separator:       defaultSeparator,
	}
}

// Validate checks that at most one segmentation step is selected.
func (c *PreprocessConfig) Validate() error {
	if c.Lang == "" {
		return fmt.Errorf("%w: empty language", ErrConfiguration)
	}

	segmenters := 0
	for _, on := range []bool{c.CharLevel, c.BPECodes != "", c.HFModel != ""} {
		if on {
			segmenters++
		}
	}
	if segmenters > 1 {
		return fmt.Errorf("%w: char-level, BPE and HuggingFace segmentation are exclusive", ErrConfiguration)
	}
	if (c.CharLevel || c.BPECodes != "") && c.Separator == "" {
		return fmt.Errorf("%w: empty separator", ErrConfiguration)
	}
	return nil
}

// Config holds the configuration of a recipe.
type Config struct {
	PreprocessConfig *PreprocessConfig `json:"preprocessConfig"`
	// CorpusConfig configures the token stores built by MakeCorpus.
	CorpusConfig *corpus.Config `json:"corpusConfig"`
	// MaxLength leaves lines with more tokens out of corpora. -1 keeps all.
	MaxLength int `json:"maxLength"`
	// VocabOptions configures MakeVocabulary.
	VocabOptions *vocab.BuildOptions `json:"vocabOptions"`
	// BoundConfig configures the length bound of the Processor.
	BoundConfig *stream.BoundConfig `json:"boundConfig"`
	// ResegmentConfig enables sentence resegmentation in the Processor.
	ResegmentConfig *stream.ResegmentConfig `json:"resegmentConfig"`
	// CacheConfig enables caching of the segmentation step.
	CacheConfig *cache.Config `json:"cacheConfig"`
	// HFTokenizerConfig configures the HuggingFace tokenizer when HFModel is set.
	HFTokenizerConfig *hftokenizer.Config `json:"hfTokenizerConfig"`
}

// DefaultConfig returns a default configuration for recipes.
func DefaultConfig() *Config {
	return &Config{
		PreprocessConfig: DefaultPreprocessConfig(),
		CorpusConfig:     corpus.DefaultConfig(),
		MaxLength:        -1,
		VocabOptions:     vocab.DefaultBuildOptions(),
		BoundConfig:      stream.DefaultBoundConfig(),
	}
}

// LoadConfig reads a YAML or JSON configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) withDefaults() *Config {
	out := *DefaultConfig()
	if c == nil {
		return &out
	}

	out.MaxLength = c.MaxLength
	out.ResegmentConfig = c.ResegmentConfig
	out.CacheConfig = c.CacheConfig
	out.HFTokenizerConfig = c.HFTokenizerConfig
	if c.PreprocessConfig != nil {
		out.PreprocessConfig = c.PreprocessConfig
	}
	if c.CorpusConfig != nil {
		out.CorpusConfig = c.CorpusConfig
	}
	if c.VocabOptions != nil {
		out.VocabOptions = c.VocabOptions
	}
	if c.BoundConfig != nil {
		out.BoundConfig = c.BoundConfig
	}
	return &out
}
