package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/arc2ipa/internal/config"
	"github.com/backmassage/arc2ipa/internal/export"
	"github.com/backmassage/arc2ipa/internal/naming"
)

// Plan builds one job per archive, in order, before any job runs. In
// rename mode every entry already present in the output directory counts
// as taken, so leftovers from a previous run are never reused. The output
// child holding the input directory is never allocated.
func Plan(cfg *config.Config, archives []string) ([]export.Job, error) {
	resolver := naming.NewCollisionResolver(cfg.OutputDir)
	if err := reserveInputAncestor(resolver, cfg); err != nil {
		return nil, err
	}
	if cfg.Existing == config.ExistingRename {
		entries, err := os.ReadDir(cfg.OutputDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read output directory: %w", err)
		}
		for _, e := range entries {
			resolver.Reserve(e.Name())
		}
	}

	b, err := export.NewBuilder(cfg, resolver)
	if err != nil {
		return nil, err
	}
	jobs := make([]export.Job, len(archives))
	for i, path := range archives {
		jobs[i] = b.Build(i+1, path)
	}
	return jobs, nil
}

// ErrInputIsOutput is returned when the input and output directories are the
// same, so every destination would sit inside the input tree.
var ErrInputIsOutput = errors.New("input directory is the output directory")

// reserveInputAncestor marks the output child that contains the input
// directory as taken. Clearing it in overwrite mode would delete archives.
func reserveInputAncestor(resolver *naming.CollisionResolver, cfg *config.Config) error {
	out, in := filepath.Clean(cfg.OutputDir), filepath.Clean(cfg.InputDir)
	if out == in {
		return ErrInputIsOutput
	}
	if !config.IsWithin(in, out) {
		return nil
	}
	rel, err := filepath.Rel(out, in)
	if err != nil {
		return err
	}
	resolver.Reserve(strings.SplitN(rel, string(filepath.Separator), 2)[0])
	return nil
}

// prepareDestination creates the job's directory. With the overwrite
// policy anything left inside it from a previous run is removed first;
// sibling directories are never touched.
func prepareDestination(dir string, policy config.ExistingPolicy) error {
	if policy == config.ExistingOverwrite {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return os.MkdirAll(dir, 0o755)
}
