/*
Copyright © 2013 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package exactextract

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// OperationSpec is the TOML-friendly, pre-resolution description of an
// Operation: a values/weights source name is given instead of a bound
// RasterSource, so that Config.Resolve can wire it up against whatever
// RasterSources the caller actually registered.
type OperationSpec struct {
	Name                string  `toml:"name"`
	Stat                string  `toml:"stat"`
	ValuesSource        string  `toml:"values"`
	WeightsSource       string  `toml:"weights"`
	MinCoverageFraction float64 `toml:"min_coverage_fraction"`
	WeightType          string  `toml:"weight_type"`
	DefaultWeight       float64 `toml:"default_weight"`
	Q                   float64 `toml:"q"`
	Value               float64 `toml:"value"`
}

// Config is the top-level, TOML-loaded description of a zonal-statistics
// run: a grid (origin, resolution, extent), the memory tile size, a
// default minimum coverage fraction, and the list of operations to
// compute, mirroring the teacher's practice of a single typed struct with
// a loader function (`VarGridConfig` in vargrid.go) rather than ad hoc
// flag parsing.
type Config struct {
	Xmin float64 `toml:"xmin"`
	Ymin float64 `toml:"ymin"`
	Xmax float64 `toml:"xmax"`
	Ymax float64 `toml:"ymax"`
	Dx   float64 `toml:"dx"`
	Dy   float64 `toml:"dy"`

	MaxCellsInMemory    int     `toml:"max_cells_in_memory"`
	MinCoverageFraction float64 `toml:"min_coverage_fraction"`

	Operations []OperationSpec `toml:"operation"`
}

// DefaultMaxCellsInMemory bounds a single processed tile's footprint when
// a Config does not set MaxCellsInMemory explicitly.
const DefaultMaxCellsInMemory = 1 << 24 // 16M cells, matching a ~64MB float32 tile

// LoadConfig reads and parses a Config from TOML text.
func LoadConfig(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("exactextract: LoadConfig: %v", err)
	}
	if cfg.MaxCellsInMemory <= 0 {
		cfg.MaxCellsInMemory = DefaultMaxCellsInMemory
	}
	return &cfg, nil
}

// Grid builds the Config's Grid from its extent and resolution fields.
func (c *Config) Grid() Grid {
	return NewGrid(Box{Xmin: c.Xmin, Ymin: c.Ymin, Xmax: c.Xmax, Ymax: c.Ymax}, c.Dx, c.Dy)
}

func parseWeightType(s string) (CoverageWeightType, error) {
	switch s {
	case "", "fraction":
		return WeightFraction, nil
	case "none":
		return WeightNone, nil
	case "area_cartesian":
		return WeightAreaCartesian, nil
	case "area_spherical_m2":
		return WeightAreaSphericalM2, nil
	case "area_spherical_km2":
		return WeightAreaSphericalKM2, nil
	default:
		return 0, fmt.Errorf("exactextract: unrecognized weight_type %q", s)
	}
}

// Resolve turns c.Operations into bound *Operation values, looking values
// and weights sources up in sources by the name each OperationSpec gives.
func (c *Config) Resolve(sources map[string]RasterSource) ([]*Operation, error) {
	ops := make([]*Operation, 0, len(c.Operations))
	for _, spec := range c.Operations {
		values, ok := sources[spec.ValuesSource]
		if !ok {
			return nil, fmt.Errorf("exactextract: Config.Resolve: unknown values source %q for operation %q", spec.ValuesSource, spec.Name)
		}

		var weights RasterSource
		if spec.WeightsSource != "" {
			weights, ok = sources[spec.WeightsSource]
			if !ok {
				return nil, fmt.Errorf("exactextract: Config.Resolve: unknown weights source %q for operation %q", spec.WeightsSource, spec.Name)
			}
		}

		weightType, err := parseWeightType(spec.WeightType)
		if err != nil {
			return nil, err
		}

		minCoverage := spec.MinCoverageFraction
		if minCoverage == 0 {
			minCoverage = c.MinCoverageFraction
		}
		if minCoverage == 0 {
			minCoverage = DefaultMinCoverageFraction
		}

		ops = append(ops, &Operation{
			Name:                spec.Name,
			Stat:                spec.Stat,
			Values:              values,
			Weights:             weights,
			MinCoverageFraction: minCoverage,
			WeightType:          weightType,
			DefaultWeight:       spec.DefaultWeight,
			Q:                   spec.Q,
			TargetValue:         spec.Value,
		})
	}
	return ops, nil
}
