package cli

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lucidgauge/hnti/internal/artifact"
	"github.com/lucidgauge/hnti/internal/convert"
	"github.com/lucidgauge/hnti/internal/evaluator"
	"github.com/lucidgauge/hnti/internal/flow"
	"github.com/lucidgauge/hnti/internal/frontend"
	"github.com/lucidgauge/hnti/internal/ir"
	"github.com/lucidgauge/hnti/internal/optimizer"
)

func newArtifactID() uuid.UUID { return uuid.New() }

// loadConfigFlag reads the persistent --config flag (declared on the
// root command, inherited by every subcommand) and loads it if set.
func loadConfigFlag(cmd *cobra.Command) (*FileConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	return loadFileConfig(path)
}

// FileConfig is the optional --config YAML file of §9: a pass-cap
// override and default backend selection that explicit flags take
// precedence over.
type FileConfig struct {
	PassCap int    `yaml:"passCap"`
	Backend string `yaml:"backend"`
}

// LoadError is a command-level failure (bad path, unreadable file)
// distinct from the core's own compilation/evaluation error taxonomy.
type LoadError struct {
	Path    string
	Message string
}

func (e *LoadError) Error() string { return e.Path + ": " + e.Message }

func loadFileConfig(path string) (*FileConfig, error) {
	if path == "" {
		return &FileConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &LoadError{Path: path, Message: "parsing config: " + err.Error()}
	}
	return &cfg, nil
}

// resolveBackend picks `hnti trace`'s evaluation engine: an explicit
// --backend flag wins, otherwise the --config file's backend default,
// otherwise BackendInterp (trace's whole point is exercising the
// interpreter fresh from source, unlike the VM-only artifact commands).
func resolveBackend(cmd *cobra.Command, cfg *FileConfig) evaluator.Backend {
	flagVal, _ := cmd.Flags().GetString("backend")
	if !cmd.Flags().Changed("backend") && cfg.Backend != "" {
		flagVal = cfg.Backend
	}
	if flagVal == "vm" {
		return evaluator.BackendVM
	}
	return evaluator.BackendInterp
}

func resolvePassCap(opts *RootOptions, cfg *FileConfig) int {
	if opts.PassCap > 0 {
		return opts.PassCap
	}
	if cfg.PassCap > 0 {
		return cfg.PassCap
	}
	return optimizer.DefaultPassCap
}

// loadedRecipe is the result of reading, converting, lowering, and
// optimizing a recipe/qualities pair — ready either for inspection
// (validate) or for linking into an artifact (compile).
type loadedRecipe struct {
	Def       flow.Definition
	Qualities []flow.Quality
	Optimized *optimizer.Result
}

func loadAndOptimize(recipePath, qualitiesPath string, passCap int, log logr.Logger) (*loadedRecipe, error) {
	recipeRaw, err := os.ReadFile(recipePath)
	if err != nil {
		return nil, &LoadError{Path: recipePath, Message: err.Error()}
	}
	qualitiesRaw, err := os.ReadFile(qualitiesPath)
	if err != nil {
		return nil, &LoadError{Path: qualitiesPath, Message: err.Error()}
	}

	def, err := convert.ConvertRecipe(recipeRaw)
	if err != nil {
		return nil, errors.Wrap(err, "converting recipe")
	}
	qualities, err := convert.ConvertQualities(qualitiesRaw)
	if err != nil {
		return nil, errors.Wrap(err, "converting qualities")
	}

	built, err := frontend.Build(def, qualities, log)
	if err != nil {
		return nil, errors.Wrap(err, "building frontend")
	}

	optResult, err := optimizer.Run(built.Paths, passCap, log)
	if err != nil {
		return nil, errors.Wrap(err, "optimizing")
	}

	return &loadedRecipe{Def: def, Qualities: qualities, Optimized: optResult}, nil
}

// compileArtifact links an optimized recipe into a self-contained
// CompiledRecipe, stamping each path's dynamic-event footprint so
// `hnti run`/`hnti replay` can drive the cross-product evaluator without
// ever seeing the original expression tree again.
func compileArtifact(lr *loadedRecipe) (*artifact.CompiledRecipe, error) {
	qs := make([]artifact.Quality, len(lr.Optimized.Paths))
	exprs := make([]*ir.Expr, len(lr.Optimized.Paths))
	for i, p := range lr.Optimized.Paths {
		qs[i] = artifact.Quality{
			Name:      p.Quality.Name,
			Priority:  p.Quality.Priority,
			Footprint: evaluator.CollectFootprint(p.Expr),
			Negated:   p.Quality.Negated,
		}
		exprs[i] = p.Expr
	}

	poolExprs := append([]*ir.Expr(nil), lr.Optimized.Pool...)

	return artifact.Compile(newArtifactID(), qs, exprs, poolExprs)
}

// buildEvaluator compiles a just-loaded recipe into an evaluator.Evaluator
// running whichever backend is asked for, including BackendInterp — the
// one case where the expression tree `internal/interp` walks still
// exists, because this runs before linking into a CompiledRecipe artifact
// discards it. Used by `hnti trace`.
func buildEvaluator(lr *loadedRecipe, backend evaluator.Backend, log logr.Logger) (*evaluator.Evaluator, error) {
	paths := make([]evaluator.Path, len(lr.Optimized.Paths))
	for i, p := range lr.Optimized.Paths {
		paths[i] = evaluator.Path{Name: p.Quality.Name, Priority: p.Quality.Priority, Expr: p.Expr}
	}
	return evaluator.New(paths, lr.Optimized.Pool, backend, log)
}

func loadArtifact(path string) (*artifact.CompiledRecipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	defer f.Close()
	return artifact.Read(f)
}

// evaluatorFromArtifact builds an evaluator.Evaluator that runs a loaded
// CompiledRecipe's bytecode directly via the VM backend.
func evaluatorFromArtifact(rec *artifact.CompiledRecipe, log logr.Logger) *evaluator.Evaluator {
	specs := make([]evaluator.CompiledPathSpec, len(rec.Paths))
	for i, p := range rec.Paths {
		specs[i] = evaluator.CompiledPathSpec{
			Name:      p.Quality.Name,
			Priority:  p.Quality.Priority,
			Footprint: p.Quality.Footprint,
			Program:   p.Program,
		}
	}
	return evaluator.NewFromCompiled(rec.Symbols, rec.Pool, specs, log)
}
