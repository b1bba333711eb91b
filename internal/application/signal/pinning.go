package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"

	"github.com/ericfisherdev/trustscore/internal/domain/model"
	"github.com/ericfisherdev/trustscore/internal/domain/port/driven"
)

// exactVersion matches an npm version that names a single release.
var exactVersion = regexp.MustCompile(`^=?v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)

// dependency is one declared dependency and whether it is pinned.
type dependency struct {
	name   string
	pinned bool
}

// PinningPractice scores the fraction of declared dependencies pinned to an
// exact version. package.json is read first, then go.mod. A repository with
// no manifest or no dependencies has nothing unpinned and scores 1.
type PinningPractice struct {
	source driven.RepositoryDataSource
}

// NewPinningPractice creates a PinningPractice evaluator.
func NewPinningPractice(source driven.RepositoryDataSource, _ Options) *PinningPractice {
	return &PinningPractice{source: source}
}

// Name implements Evaluator.
func (e *PinningPractice) Name() model.SignalName { return model.SignalPinningPractice }

// Evaluate implements Evaluator.
func (e *PinningPractice) Evaluate(ctx context.Context, ref model.RepositoryReference) (float64, error) {
	deps, err := e.dependencies(ctx, ref)
	if err != nil {
		return 0, err
	}

	if len(deps) == 0 {
		return 1, nil
	}

	pinned := 0
	for _, d := range deps {
		if d.pinned {
			pinned++
		}
	}
	return float64(pinned) / float64(len(deps)), nil
}

func (e *PinningPractice) dependencies(ctx context.Context, ref model.RepositoryReference) ([]dependency, error) {
	pkg, err := e.source.File(ctx, ref.Owner, ref.Name, "package.json")
	switch {
	case err == nil:
		deps, err := npmDependencies(pkg.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: package.json: %w", ErrMalformedData, err)
		}
		return deps, nil
	case !errors.Is(err, driven.ErrNotFound):
		return nil, fetchError("package.json", err)
	}

	mod, err := e.source.File(ctx, ref.Owner, ref.Name, "go.mod")
	switch {
	case errors.Is(err, driven.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, fetchError("go.mod", err)
	}

	deps, err := goModDependencies(mod.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: go.mod: %w", ErrMalformedData, err)
	}
	return deps, nil
}

// npmDependencies reads runtime and dev dependencies from a package.json.
func npmDependencies(data []byte) ([]dependency, error) {
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	deps := make([]dependency, 0, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for _, set := range []map[string]string{manifest.Dependencies, manifest.DevDependencies} {
		for name, version := range set {
			deps = append(deps, dependency{
				name:   name,
				pinned: exactVersion.MatchString(strings.TrimSpace(version)),
			})
		}
	}
	return deps, nil
}

// goModDependencies reads require directives from a go.mod. Requirements are
// exact by construction; a replace pointing at a local directory unpins the
// module it replaces.
func goModDependencies(data []byte) ([]dependency, error) {
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return nil, err
	}

	localReplace := make(map[string]bool)
	for _, r := range f.Replace {
		if r.New.Version == "" {
			localReplace[r.Old.Path] = true
		}
	}

	deps := make([]dependency, 0, len(f.Require))
	for _, r := range f.Require {
		deps = append(deps, dependency{
			name:   r.Mod.Path,
			pinned: semver.IsValid(r.Mod.Version) && !localReplace[r.Mod.Path],
		})
	}
	return deps, nil
}
