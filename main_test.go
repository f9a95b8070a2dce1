package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamanufred/reBLAST/pkg/config"
	"github.com/kamanufred/reBLAST/pkg/handler"
	"github.com/kamanufred/reBLAST/pkg/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_MissingMandatoryOption(t *testing.T) {
	out, err := execute(t, "-a", "a.faa", "-b", "b.faa", "-t", "prot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"output"`)
	assert.Contains(t, out, "Usage:")
}

func TestRootCmd_NoOptions(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
	for _, name := range []string{"genome1", "genome2", "type", "output"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestRootCmd_UnknownMolType(t *testing.T) {
	_, err := execute(t, "-a", "a.faa", "-b", "b.faa", "-t", "rna", "-o", "out.tsv")
	assert.ErrorIs(t, err, model.ErrUnknownMolType)
}

func TestRootCmd_MissingGenomeFile(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t,
		"-a", filepath.Join(dir, "a.faa"), "-b", filepath.Join(dir, "b.faa"),
		"-t", "prot", "-o", filepath.Join(dir, "out.tsv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, filepath.Join(dir, "out.tsv"))
}

func TestVersionCmd(t *testing.T) {
	original := version
	version = "test-version-1.0.0"
	defer func() { version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "reblast version test-version-1.0.0")
}

func TestBuildConfig_Precedence(t *testing.T) {
	params := filepath.Join(t.TempDir(), "params.toml")
	require.NoError(t, os.WriteFile(params, []byte("evalue = 0.5\nnum_threads = 3\nmax_target_seqs = 9\n"), 0o644))

	t.Setenv(config.EnvThreads, "6")
	t.Setenv(config.EnvMaxTargetSeqs, "7")

	var cfg config.Config
	var buildErr error
	cmd := newRootCmd()
	cmd.RunE = func(c *cobra.Command, args []string) error {
		cfg, buildErr = buildConfig(c, runOptionsFrom(t, c))
		return nil
	}
	cmd.SetArgs([]string{
		"-a", "a.faa", "-b", "b.faa", "-t", "nucl", "-o", "o.tsv",
		"--config", params,
		"--max-target-seqs", "1",
	})
	require.NoError(t, cmd.Execute())
	require.NoError(t, buildErr)

	assert.Equal(t, 0.5, cfg.Search.EValue, "file beats default")
	assert.Equal(t, 6, cfg.Search.Threads, "env beats file")
	assert.Equal(t, 1, cfg.Search.MaxTargetSeqs, "flag beats env")
	assert.Equal(t, model.Nucleotide, cfg.MolType)
}

// runOptionsFrom reads the parsed flag values back out of cmd.
func runOptionsFrom(t *testing.T, cmd *cobra.Command) runOptions {
	t.Helper()
	f := cmd.Flags()
	var opts runOptions
	var err error
	opts.genome1, err = f.GetString("genome1")
	require.NoError(t, err)
	opts.genome2, _ = f.GetString("genome2")
	opts.molType, _ = f.GetString("type")
	opts.output, _ = f.GetString("output")
	opts.evalue, _ = f.GetFloat64("evalue")
	opts.maxTargets, _ = f.GetInt("max-target-seqs")
	opts.threads, _ = f.GetInt("threads")
	opts.configFile, _ = f.GetString("config")
	return opts
}

func TestNewRouter_Health(t *testing.T) {
	mux := NewRouter(&handler.RunContext{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"health":"ok"`)
}

func TestServeCmd_RequiresDB(t *testing.T) {
	t.Setenv(config.EnvDB, "")
	_, err := execute(t, "serve")
	assert.ErrorContains(t, err, "--db")
}
