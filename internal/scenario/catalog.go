// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package scenario

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/matt-FFFFFF/mapfbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

// DefaultPattern matches scenario input files inside a group directory.
const DefaultPattern = "*.yaml"

var (
	// ErrNotFound is returned when the root directory does not exist.
	ErrNotFound = errors.New("scenario directory not found")
	// ErrNotDir is returned when the root is not a directory.
	ErrNotDir = errors.New("scenario root is not a directory")
	// ErrList is returned when a directory cannot be listed.
	ErrList = errors.New("failed to list scenario directory")
)

// FsFactory returns the filesystem used to discover scenarios.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// File is one scenario input file.
type File struct {
	Path string
	Name string
	// Agents is only meaningful when HasAgents is true.
	Agents    int
	HasAgents bool
}

// Group is a directory of scenario files of the same type.
type Group struct {
	Name  string
	Type  string
	Dir   string
	Files []File
}

// Options controls discovery.
type Options struct {
	// Limit keeps only the first Limit files of each group. Zero keeps all.
	Limit int
	// Pattern is the glob for input files. Empty means DefaultPattern.
	Pattern string
	// Fs overrides FsFactory when set.
	Fs afero.Fs
}

// Discover lists the scenario groups below root in natural order.
// Each immediate, non-hidden subdirectory with at least one matching file is a group.
func Discover(ctx context.Context, root string, opts Options) ([]Group, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = FsFactory()
	}

	info, err := fsys.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrNotFound, err)
		}

		return nil, errors.Join(ErrList, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, root)
	}

	entries, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, errors.Join(ErrList, err)
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}

	var groups []Group

	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !e.IsDir() || e.Name()[0] == '.' {
			continue
		}

		g, err := loadGroup(fsys, filepath.Join(root, e.Name()), pattern, opts.Limit)
		if err != nil {
			return nil, err
		}

		if len(g.Files) == 0 {
			ctxlog.Debug(ctx, "skipping directory without scenario files", "dir", g.Dir)
			continue
		}

		groups = append(groups, g)
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return NaturalCompare(a.Name, b.Name)
	})

	return groups, nil
}

func loadGroup(fsys afero.Fs, dir, pattern string, limit int) (Group, error) {
	name := filepath.Base(dir)
	g := Group{
		Name: name,
		Type: ScenarioType(name),
		Dir:  dir,
	}

	matches, err := afero.Glob(fsys, filepath.Join(dir, pattern))
	if err != nil {
		return g, fmt.Errorf("%w: bad pattern %q: %w", ErrList, pattern, err)
	}

	slices.SortFunc(matches, func(a, b string) int {
		return NaturalCompare(filepath.Base(a), filepath.Base(b))
	})

	for _, m := range matches {
		info, err := fsys.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}

		g.Files = append(g.Files, NewFile(m))
	}

	if limit > 0 && len(g.Files) > limit {
		g.Files = g.Files[:limit]
	}

	return g, nil
}

// NewFile builds a File from its path, parsing the agent count from the name.
func NewFile(path string) File {
	name := filepath.Base(path)
	n, ok := AgentCount(name)

	return File{
		Path:      path,
		Name:      name,
		Agents:    n,
		HasAgents: ok,
	}
}
