// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package summary

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

const (
	filePrefix = "global_averages_"
	fileSuffix = ".yaml"
	filePerm   = 0o644
	dirPerm    = 0o755
)

// ErrWriteFailure is returned when one or more summary files could not be written.
var ErrWriteFailure = errors.New("failed to write summary")

// FileName is the summary file name for a scenario type.
func FileName(scenarioType string) string {
	return filePrefix + scenarioType + fileSuffix
}

// Write writes one summary file per scenario type into dir and returns the paths written.
// Each file is written to a temporary name and renamed into place, so a failed write
// never leaves a complete-looking file. A failure for one type does not stop the others.
func Write(fsys afero.Fs, dir string, t Table) ([]string, error) {
	if err := fsys.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	var (
		written []string
		result  *multierror.Error
	)

	for _, st := range t.ScenarioTypes() {
		path := filepath.Join(dir, FileName(st))

		if err := writeAtomic(fsys, path, t.Rows(st)); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", st, err))
			continue
		}

		written = append(written, path)
	}

	if err := result.ErrorOrNil(); err != nil {
		return written, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	return written, nil
}

func writeAtomic(fsys afero.Fs, path string, rows []Row) error {
	data, err := marshalRows(rows)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()

	if err := errors.Join(werr, cerr); err != nil {
		_ = fsys.Remove(tmpName)
		return err
	}

	if err := fsys.Chmod(tmpName, filePerm); err != nil {
		_ = fsys.Remove(tmpName)
		return err
	}

	if err := fsys.Rename(tmpName, path); err != nil {
		_ = fsys.Remove(tmpName)
		return err
	}

	return nil
}
