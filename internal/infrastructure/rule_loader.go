package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/Victor-armando18/cart-pricing/internal/domain"
	"github.com/Victor-armando18/cart-pricing/internal/infrastructure/yaml"
)

const packSuffix = "_conditions"

// FileConditionPackLoader reads packs named <version>_conditions.{json,yaml,yml}
// from a directory.
type FileConditionPackLoader struct {
	Dir string
}

func NewFileConditionPackLoader(dir string) *FileConditionPackLoader {
	return &FileConditionPackLoader{Dir: dir}
}

type packFile struct {
	version *semver.Version
	path    string
}

// Load resolves version against the packs on disk. "1.2", "v1.2" and
// "v1.2.0" name the same pack; an empty version or "latest" picks the highest,
// and a semver range picks the highest match.
func (l *FileConditionPackLoader) Load(ctx context.Context, version string) (*domain.ConditionPack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := l.scan()
	if err != nil {
		return nil, err
	}
	file, err := pick(files, version)
	if err != nil {
		return nil, err
	}

	pack, err := decodePack(file.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load condition pack %s: %w", file.path, err)
	}
	if pack.Version == "" {
		pack.Version = file.version.Original()
	}
	return pack, nil
}

// Versions lists the available pack versions, highest first.
func (l *FileConditionPackLoader) Versions() ([]string, error) {
	files, err := l.scan()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.version.Original()
	}
	return out, nil
}

func (l *FileConditionPackLoader) scan() ([]packFile, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read condition pack dir %s: %w", l.Dir, err)
	}

	var files []packFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		switch ext {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if !strings.HasSuffix(name, packSuffix) {
			continue
		}
		v, err := semver.NewVersion(strings.TrimSuffix(name, packSuffix))
		if err != nil {
			continue
		}
		files = append(files, packFile{version: v, path: filepath.Join(l.Dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version.GreaterThan(files[j].version) })
	return files, nil
}

func pick(files []packFile, version string) (packFile, error) {
	version = strings.TrimSpace(version)
	if version == "" || strings.EqualFold(version, "latest") {
		if len(files) == 0 {
			return packFile{}, fmt.Errorf("%w: no packs available", domain.ErrPackNotFound)
		}
		return files[0], nil
	}

	if want, err := semver.NewVersion(version); err == nil {
		for _, f := range files {
			if f.version.Equal(want) {
				return f, nil
			}
		}
		return packFile{}, fmt.Errorf("%w: %s", domain.ErrPackNotFound, version)
	}

	// A range such as "^1.2" or ">= 1.0, < 2" selects the highest match.
	constraint, err := semver.NewConstraint(version)
	if err != nil {
		return packFile{}, fmt.Errorf("%w: invalid version %q: %v", domain.ErrPackNotFound, version, err)
	}
	for _, f := range files {
		if constraint.Check(f.version) {
			return f, nil
		}
	}
	return packFile{}, fmt.Errorf("%w: no pack matches %s", domain.ErrPackNotFound, version)
}

func decodePack(path string) (*domain.ConditionPack, error) {
	if ext := filepath.Ext(path); ext == ".yaml" || ext == ".yml" {
		return yaml.LoadConditionPack(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pack domain.ConditionPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal condition pack: %w", err)
	}
	return &pack, nil
}
