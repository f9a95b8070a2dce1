// Package config holds the settings of one reciprocal-best-hit run.
//
// A Config is a plain value: it is built once (defaults, then an optional
// TOML file, then the environment, then command-line flags) and passed by
// value to every stage afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/kamanufred/reBLAST/internal/util"
	"github.com/kamanufred/reBLAST/pkg/blast"
	"github.com/kamanufred/reBLAST/pkg/model"
)

var ErrMissingOption = errors.New("a mandatory option is missing")

// Environment variables read by FromEnv.
const (
	EnvEValue        = "REBLAST_EVALUE"
	EnvMaxTargetSeqs = "REBLAST_MAX_TARGET_SEQS"
	EnvThreads       = "REBLAST_THREADS"
	EnvWorkDir       = "REBLAST_WORK_DIR"
	EnvBlastBinDir   = "REBLAST_BLAST_BIN_DIR"
	EnvDB            = "REBLAST_DB"
)

type Config struct {
	Genome1 string
	Genome2 string
	MolType model.MolType
	Output  string

	Search blast.SearchParams

	// WorkDir is where the per-run workspace is created. Empty means os.TempDir().
	WorkDir     string
	BlastBinDir string
	// DBPath, when set, is the sqlite file the run is recorded in.
	DBPath      string
	KeepWorkDir bool
}

func Default() Config {
	return Config{Search: blast.DefaultSearchParams}
}

// fileConfig mirrors the keys allowed in a params file. Pointers tell
// "absent" apart from a zero value.
type fileConfig struct {
	EValue        *float64 `toml:"evalue"`
	MaxTargetSeqs *int     `toml:"max_target_seqs"`
	Threads       *int     `toml:"num_threads"`
	WorkDir       *string  `toml:"work_dir"`
	BlastBinDir   *string  `toml:"blast_bin_dir"`
	DBPath        *string  `toml:"db_path"`
	KeepWorkDir   *bool    `toml:"keep_work_dir"`
}

// LoadFile returns c overlaid with the values found in the TOML file at path.
func LoadFile(c Config, path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	decoder := toml.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fc); err != nil {
		return c, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.EValue != nil {
		c.Search.EValue = *fc.EValue
	}
	if fc.MaxTargetSeqs != nil {
		c.Search.MaxTargetSeqs = *fc.MaxTargetSeqs
	}
	if fc.Threads != nil {
		c.Search.Threads = *fc.Threads
	}
	if fc.WorkDir != nil {
		c.WorkDir = *fc.WorkDir
	}
	if fc.BlastBinDir != nil {
		c.BlastBinDir = *fc.BlastBinDir
	}
	if fc.DBPath != nil {
		c.DBPath = *fc.DBPath
	}
	if fc.KeepWorkDir != nil {
		c.KeepWorkDir = *fc.KeepWorkDir
	}
	return c, nil
}

// FromEnv returns c overlaid with the REBLAST_* variables that are set.
// getenv is usually os.Getenv.
func FromEnv(c Config, getenv func(string) string) (Config, error) {
	if v := strings.TrimSpace(getenv(EnvEValue)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvEValue, err)
		}
		c.Search.EValue = f
	}
	if v := strings.TrimSpace(getenv(EnvMaxTargetSeqs)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvMaxTargetSeqs, err)
		}
		c.Search.MaxTargetSeqs = n
	}
	if v := strings.TrimSpace(getenv(EnvThreads)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%s: %w", EnvThreads, err)
		}
		c.Search.Threads = n
	}
	if v := getenv(EnvWorkDir); v != "" {
		c.WorkDir = v
	}
	if v := getenv(EnvBlastBinDir); v != "" {
		c.BlastBinDir = v
	}
	if v := getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	return c, nil
}

// Validate checks the options without touching the filesystem.
func (c Config) Validate() error {
	var missing []string
	if c.Genome1 == "" {
		missing = append(missing, "--genome1")
	}
	if c.Genome2 == "" {
		missing = append(missing, "--genome2")
	}
	if c.MolType == "" {
		missing = append(missing, "--type")
	}
	if c.Output == "" {
		missing = append(missing, "--output")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingOption, strings.Join(missing, ", "))
	}

	if _, err := model.ParseMolType(string(c.MolType)); err != nil {
		return err
	}
	if c.Search.EValue <= 0 {
		return fmt.Errorf("e-value must be positive, got %g", c.Search.EValue)
	}
	if c.Search.MaxTargetSeqs < 1 {
		return fmt.Errorf("max target seqs must be at least 1, got %d", c.Search.MaxTargetSeqs)
	}
	if c.Search.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Search.Threads)
	}
	return nil
}

// CheckInputs makes sure both genomes are readable FASTA files and that the
// output directory and the work directory, if given, exist.
func (c Config) CheckInputs() error {
	for _, genome := range []string{c.Genome1, c.Genome2} {
		if !util.FileExists(genome) {
			return fmt.Errorf("genome file %s: %w", genome, os.ErrNotExist)
		}
		if err := checkFastaFile(genome); err != nil {
			return fmt.Errorf("genome file %s: %w", genome, err)
		}
	}
	if outDir := filepath.Dir(c.Output); !util.DirExists(outDir) {
		return fmt.Errorf("output directory %s: %w", outDir, os.ErrNotExist)
	}
	if c.WorkDir != "" && !util.DirExists(c.WorkDir) {
		return fmt.Errorf("work dir %s: %w", c.WorkDir, os.ErrNotExist)
	}
	return nil
}

func checkFastaFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return model.CheckFasta(f)
}
