// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/mapfbatch/internal/metrics"
	"github.com/matt-FFFFFF/mapfbatch/internal/scenario"
	"github.com/spf13/afero"
)

// Defaults.
const (
	DefaultSolver          = "./build/libMultiRobotPlanning/ecbs"
	DefaultWeight          = 1.1
	DefaultTimeout         = 180 * time.Second
	DefaultGrace           = 2 * time.Second
	DefaultTickInterval    = 10 * time.Second
	DefaultStatisticsLines = 6
	DefaultFastThreshold   = 1.0
)

// DefaultWeightedSolvers are the solvers that take a weight argument.
var DefaultWeightedSolvers = []string{"ecbs"}

var (
	// ErrInvalidYaml is returned when the config file cannot be parsed.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrReadConfig is returned when the config file cannot be read.
	ErrReadConfig = errors.New("failed to read config file")
	// ErrInvalidConfig is returned by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// FsFactory returns the filesystem config files are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Duration is a time.Duration written as "180s" or as a number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"'`)

	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}

	*d = Duration(secs * float64(time.Second))

	return nil
}

// MarshalYAML implements yaml.BytesMarshaler.
func (d Duration) MarshalYAML() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Batch is the content of a batch config file. Command line flags override it.
type Batch struct {
	Inputs          string    `yaml:"inputs"`
	Limit           int       `yaml:"limit"`
	Pattern         string    `yaml:"pattern"`
	Solver          string    `yaml:"solver"`
	Weight          float64   `yaml:"weight"`
	Weighted        *bool     `yaml:"weighted,omitempty"`
	WeightedSolvers []string  `yaml:"weighted_solvers"`
	Timeout         Duration  `yaml:"timeout"`
	Grace           Duration  `yaml:"grace"`
	TickInterval    Duration  `yaml:"tick_interval"`
	VerifyExisting  bool      `yaml:"verify_existing"`
	StatisticsLines int       `yaml:"statistics_lines"`
	Report          string    `yaml:"report"`
	Metrics         []string  `yaml:"metrics"`
	FastThresholds  []float64 `yaml:"fast_thresholds"`
	SummaryDir      string    `yaml:"summary_dir"`
}

// Default returns the built-in configuration.
func Default() Batch {
	return Batch{
		Pattern:         scenario.DefaultPattern,
		Solver:          DefaultSolver,
		Weight:          DefaultWeight,
		WeightedSolvers: DefaultWeightedSolvers,
		Timeout:         Duration(DefaultTimeout),
		Grace:           Duration(DefaultGrace),
		TickInterval:    Duration(DefaultTickInterval),
		StatisticsLines: DefaultStatisticsLines,
		FastThresholds:  []float64{DefaultFastThreshold},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their default.
func Load(path string) (Batch, error) {
	b := Default()

	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return b, errors.Join(ErrReadConfig, err)
	}

	if err := yaml.UnmarshalWithOptions(data, &b, yaml.Strict()); err != nil {
		return b, fmt.Errorf("%w: %s", ErrInvalidYaml, yaml.FormatError(err, false, true))
	}

	return b, nil
}

// IsWeighted reports whether the weight is passed to the solver.
func (b Batch) IsWeighted() bool {
	if b.Weighted != nil {
		return *b.Weighted
	}

	return scenario.IsWeighted(b.Solver, b.WeightedSolvers)
}

// Layout returns where this configuration's solver writes its output.
func (b Batch) Layout() scenario.Layout {
	return scenario.Layout{
		Solver:   b.Solver,
		Weight:   b.Weight,
		Weighted: b.IsWeighted(),
	}
}

// MetricList parses Metrics. An empty list means every metric.
func (b Batch) MetricList() ([]metrics.Metric, error) {
	return metrics.ParseList(b.Metrics)
}

// Validate reports every problem with a batch configuration at once.
func (b Batch) Validate() error {
	var result *multierror.Error

	if b.Inputs == "" {
		result = multierror.Append(result, errors.New("inputs directory is required"))
	}

	if b.Solver == "" {
		result = multierror.Append(result, errors.New("solver path is required"))
	}

	if b.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeout must be positive, got %s", time.Duration(b.Timeout)))
	}

	if b.Grace < 0 {
		result = multierror.Append(result, fmt.Errorf("grace must not be negative, got %s", time.Duration(b.Grace)))
	}

	if b.Limit < 0 {
		result = multierror.Append(result, fmt.Errorf("limit must not be negative, got %d", b.Limit))
	}

	if b.IsWeighted() && b.Weight <= 0 {
		result = multierror.Append(result, fmt.Errorf("weight must be positive, got %g", b.Weight))
	}

	if b.StatisticsLines < 0 {
		result = multierror.Append(result, fmt.Errorf("statistics_lines must not be negative, got %d", b.StatisticsLines))
	}

	if _, err := b.MetricList(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
