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

// Command textcorpus builds vocabularies and memory-mapped token stores from
// text files, and runs text through the line pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"
	"k8s.io/klog/v2"

	"github.com/llm-d/llm-d-text-corpus/pkg/corpus"
	"github.com/llm-d/llm-d-text-corpus/pkg/metrics"
	"github.com/llm-d/llm-d-text-corpus/pkg/recipes"
	"github.com/llm-d/llm-d-text-corpus/pkg/stream"
	"github.com/llm-d/llm-d-text-corpus/pkg/textproc/cache"
	"github.com/llm-d/llm-d-text-corpus/pkg/utils"
	"github.com/llm-d/llm-d-text-corpus/pkg/vocab"
)

const (
	envRedisAddr = "REDIS_ADDR"
	envHFToken   = "HF_TOKEN"
)

// CLI defines the command-line interface of textcorpus.
var CLI struct {
	Verbosity       int           `short:"v" help:"Log verbosity (4 debug, 5 trace)." default:"0"`
	Metrics         bool          `help:"Register store and cache metrics with the Prometheus registry."`
	MetricsInterval time.Duration `name:"metrics-interval" help:"Log metric values at this interval, 0 disables." default:"0s"`

	Vocab         VocabCmd         `cmd:"" help:"Build a vocabulary from text files."`
	Build         BuildCmd         `cmd:"" help:"Build or reuse the token store of text files."`
	BuildParallel BuildParallelCmd `cmd:"" name:"build-parallel" help:"Build or reuse an aligned source/target token store."`
	Show          ShowCmd          `cmd:"" help:"Print lines of a token store."`
	Process       ProcessCmd       `cmd:"" help:"Run text files through the processor and print the result."`
}

// RecipeFlags select the recipe configuration.
type RecipeFlags struct {
	Config    string `help:"YAML or JSON recipe configuration." type:"existingfile"`
	Lang      string `help:"Language code, overrides the configuration."`
	CharLevel bool   `name:"char-level" help:"Segment words into characters."`
	Lowercase bool   `help:"Lowercase lines."`
}

func (f *RecipeFlags) load() (*recipes.Config, error) {
	cfg := recipes.DefaultConfig()
	if f.Config != "" {
		var err error
		if cfg, err = recipes.LoadConfig(f.Config); err != nil {
			return nil, err
		}
	}

	if f.Lang != "" {
		cfg.PreprocessConfig.Lang = f.Lang
	}
	cfg.PreprocessConfig.CharLevel = cfg.PreprocessConfig.CharLevel || f.CharLevel
	cfg.PreprocessConfig.Lowercase = cfg.PreprocessConfig.Lowercase || f.Lowercase

	if token := os.Getenv(envHFToken); token != "" && cfg.HFTokenizerConfig != nil {
		cfg.HFTokenizerConfig.HuggingFaceToken = token
	}

	redisAddr := os.Getenv(envRedisAddr)
	if redisAddr != "" {
		redisOpt, err := redis.ParseURL(redisAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis host: %w", err)
		}
		cfg.CacheConfig = &cache.Config{RedisConfig: &cache.RedisConfig{Address: redisOpt.Addr}}
	}

	return cfg, nil
}

func newMonolingual(ctx context.Context, cfg *recipes.Config) (*recipes.Monolingual, error) {
	if cfg.PreprocessConfig.CharLevel {
		return recipes.NewMonolingualCharLevel(ctx, cfg)
	}
	return recipes.NewMonolingualWordLevel(ctx, cfg)
}

// StoreFlags configure the token store being built.
type StoreFlags struct {
	Output    string `required:"" short:"o" help:"Path prefix of the token store." type:"path"`
	IDWidth   int    `name:"id-width" help:"Bytes per stored id: 2, 4 or 8." default:"8"`
	NoReuse   bool   `name:"no-reuse" help:"Rebuild even if the store exists."`
	MaxLength int    `name:"max-length" help:"Leave out lines with more tokens. -1 keeps all." default:"-1"`
}

func (f *StoreFlags) apply(cfg *recipes.Config) {
	cfg.CorpusConfig.OutputPath = f.Output
	cfg.CorpusConfig.IDWidth = f.IDWidth
	cfg.CorpusConfig.Reuse = !f.NoReuse
	cfg.MaxLength = f.MaxLength
}

// VocabCmd builds a vocabulary.
type VocabCmd struct {
	RecipeFlags `embed:""`

	Output   string   `required:"" short:"o" help:"Vocabulary file to write." type:"path"`
	MinCount int64    `name:"min-count" help:"Drop tokens seen fewer times." default:"1"`
	MaxSize  int      `name:"max-size" help:"Keep at most this many tokens. 0 keeps all." default:"0"`
	Files    []string `arg:"" help:"Input text files (.xz accepted)." type:"existingfile"`
}

func (c *VocabCmd) Run(ctx context.Context) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	cfg.VocabOptions = &vocab.BuildOptions{MinCount: c.MinCount, MaxSize: c.MaxSize}

	m, err := newMonolingual(ctx, cfg)
	if err != nil {
		return err
	}
	v, err := m.MakeVocabulary(ctx, c.Files)
	if err != nil {
		return err
	}
	if err := v.Save(c.Output); err != nil {
		return err
	}

	fmt.Printf("vocabulary of %s entries written to %s\n", humanize.Comma(int64(v.Size())), c.Output)
	return nil
}

// BuildCmd builds a token store.
type BuildCmd struct {
	RecipeFlags `embed:""`
	StoreFlags  `embed:""`

	Vocab string   `required:"" help:"Vocabulary file." type:"existingfile"`
	Files []string `arg:"" help:"Input text files (.xz accepted)." type:"existingfile"`
}

func (c *BuildCmd) Run(ctx context.Context) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	c.apply(cfg)

	v, err := vocab.Load(c.Vocab)
	if err != nil {
		return err
	}
	m, err := newMonolingual(ctx, cfg)
	if err != nil {
		return err
	}

	s, err := m.MakeCorpus(ctx, c.Files, v)
	if err != nil {
		return err
	}
	defer s.Close()

	printStore(s)
	return nil
}

// BuildParallelCmd builds an aligned token store of two languages.
type BuildParallelCmd struct {
	StoreFlags `embed:""`

	SrcConfig string   `name:"src-config" help:"Recipe configuration of the source side." type:"existingfile"`
	TgtConfig string   `name:"tgt-config" help:"Recipe configuration of the target side." type:"existingfile"`
	SrcLang   string   `name:"src-lang" help:"Source language code."`
	TgtLang   string   `name:"tgt-lang" help:"Target language code."`
	Vocabs    []string `required:"" help:"Source and target vocabulary files." type:"existingfile"`
	Src       []string `required:"" help:"Source text files." type:"existingfile"`
	Tgt       []string `required:"" help:"Target text files." type:"existingfile"`
}

func (c *BuildParallelCmd) Run(ctx context.Context) error {
	if len(c.Vocabs) != 2 {
		return fmt.Errorf("expected 2 vocabularies, got %d", len(c.Vocabs))
	}

	src, err := (&RecipeFlags{Config: c.SrcConfig, Lang: c.SrcLang}).load()
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	c.apply(src)
	tgt, err := (&RecipeFlags{Config: c.TgtConfig, Lang: c.TgtLang}).load()
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	vocabs, err := utils.SliceMapE(c.Vocabs, vocab.Load)
	if err != nil {
		return err
	}

	b, err := recipes.NewBilingualWordLevel(ctx, src, tgt)
	if err != nil {
		return err
	}
	p, err := b.MakeCorpus(ctx, c.Src, c.Tgt, vocabs[0], vocabs[1])
	if err != nil {
		return err
	}
	defer p.Close()

	for k := range p.NumStreams() {
		printStore(p.Store(k))
	}
	return nil
}

// ShowCmd prints stored lines.
type ShowCmd struct {
	Path  string `arg:"" help:"Path prefix of the token store."`
	Vocab string `required:"" help:"Vocabulary file." type:"existingfile"`
	From  int    `help:"First line to print." default:"0"`
	Count int    `short:"n" help:"Number of lines to print." default:"10"`
	IDs   bool   `name:"ids" help:"Print ids instead of tokens."`
}

func (c *ShowCmd) Run(ctx context.Context) error {
	v, err := vocab.Load(c.Vocab)
	if err != nil {
		return err
	}
	s, err := corpus.Load(ctx, c.Path, v)
	if err != nil {
		return err
	}
	defer s.Close()

	for i := c.From; i < min(s.Len(), c.From+c.Count); i++ {
		if c.IDs {
			ids, err := s.IDs(i)
			if err != nil {
				return err
			}
			fmt.Printf("%d\t%v\n", i, ids)
			continue
		}

		line, err := s.Line(i)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\n", i, line)
	}
	return nil
}

// ProcessCmd prints processed lines, or with --restore the lines rebuilt
// from them.
type ProcessCmd struct {
	RecipeFlags `embed:""`

	MaxLength int      `name:"max-length" help:"Bound on tokens per line. -1 disables it." default:"-1"`
	Split     bool     `help:"Split over-long lines instead of dropping them."`
	Resegment bool     `help:"Resegment lines into sentences."`
	Restore   bool     `help:"Rejoin and postprocess the processed lines."`
	Files     []string `arg:"" help:"Input text files (.xz accepted)." type:"existingfile"`
}

func (c *ProcessCmd) Run(ctx context.Context) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	cfg.BoundConfig = &stream.BoundConfig{MaxLength: c.MaxLength, Split: c.Split}
	if c.Resegment && cfg.ResegmentConfig == nil {
		cfg.ResegmentConfig = stream.DefaultResegmentConfig()
		cfg.ResegmentConfig.Lang = cfg.PreprocessConfig.Lang
	}

	p, err := recipes.NewProcessor(ctx, cfg)
	if err != nil {
		return err
	}

	lines, ledger := p.Process(ctx, stream.ReadLines(c.Files...))
	if c.Restore {
		lines = p.Restore(ctx, lines, ledger)
	}
	for line, err := range lines {
		if err != nil {
			return err
		}
		fmt.Println(line)
	}
	return nil
}

func printStore(s *corpus.Store) {
	fmt.Printf("%s: %s lines, %s tokens, %d-byte ids\n", s.Path(),
		humanize.Comma(int64(s.Len())), humanize.Comma(s.NumTokens()), s.IDWidth())
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("textcorpus"),
		kong.Description("Build memory-mapped token corpora from text."),
		kong.UsageOnError(),
	)

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	if err := klogFlags.Set("v", strconv.Itoa(CLI.Verbosity)); err != nil {
		kctx.FatalIfErrorf(err)
	}
	defer klog.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if CLI.Metrics {
		metrics.Register()
		if CLI.MetricsInterval > 0 {
			metrics.StartMetricsLogging(ctx, CLI.MetricsInterval)
		}
	}

	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(); err != nil {
		klog.FromContext(ctx).Error(err, "command failed", "command", kctx.Command())
		klog.Flush()
		os.Exit(1)
	}
}
