/*
 * config.go, part of goagg.
 *
 * Copyright 2026 The goagg Authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rmera/goagg/cluster"
	"github.com/rmera/goagg/dist"
	"github.com/rmera/goagg/pipeline"
)

// Config holds the settings of a run. It can be read from a yaml file,
// and every field can be overridden with a flag.
type Config struct {
	Structure  string   `yaml:"structure"`
	Traj       string   `yaml:"traj"`
	Top        string   `yaml:"top"`
	Residues   []string `yaml:"residues"`
	Query      string   `yaml:"query"`
	MinSamples int      `yaml:"min_samples"`
	Cutoff     float64  `yaml:"cutoff"`
	Group      string   `yaml:"group"`
	Fast       bool     `yaml:"fast"`
	DT         float64  `yaml:"dt"`
	Out        string   `yaml:"out"`
	Summary    string   `yaml:"summary"`
	Sizes      string   `yaml:"sizes"`
	Plot       string   `yaml:"plot"`
	Metrics    string   `yaml:"metrics"`
	Checkpoint string   `yaml:"checkpoint"`
}

// DefaultConfig returns the settings used when neither the config file
// nor the flags give a value.
func DefaultConfig() *Config {
	return &Config{
		MinSamples: 3,
		Cutoff:     10,
		Group:      "atom",
		DT:         1,
		Out:        cluster.DefaultFile,
		Summary:    cluster.DefaultSummaryFile,
	}
}

// Load reads the yaml file name into c. Fields missing from the file keep
// their values, and unknown fields are an error.
func (c *Config) Load(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", name, err)
	}
	return nil
}

// addRunFlags defines the flags of the run command, storing their values in fl.
func addRunFlags(cmd *cobra.Command, fl *Config, configFile *string) {
	d := DefaultConfig()
	f := cmd.Flags()
	f.StringVar(configFile, "config", "", "yaml file with the settings; flags given override it")
	f.StringVarP(&fl.Structure, "structure", "s", "", "structure file (.gro), giving the atoms")
	f.StringVarP(&fl.Traj, "traj", "f", "", "trajectory (.gro, .stf or .dcd); the structure file if not given")
	f.StringVarP(&fl.Top, "top", "p", "", "GROMACS topology (.top), to define molecules")
	f.StringSliceVar(&fl.Residues, "res", nil, "names of the residues to cluster")
	f.StringVar(&fl.Query, "query", "", "selection query, used instead of --res")
	f.IntVar(&fl.MinSamples, "min", d.MinSamples, "minimum number of neighbors, itself included, of a core atom")
	f.Float64Var(&fl.Cutoff, "cutoff", d.Cutoff, "cutoff, in A, for distances and clustering")
	f.StringVar(&fl.Group, "group", d.Group, "measure clusters by atom, res or mol")
	f.BoolVar(&fl.Fast, "fast", false, "compute only distances below the cutoff, with a cell grid")
	f.Float64Var(&fl.DT, "dt", d.DT, "time between frames, in ps, for trajectories without times")
	f.StringVarP(&fl.Out, "out", "o", d.Out, "clustered trajectory (.msgpack, .msgpack.gz or .msgpack.zst)")
	f.StringVar(&fl.Summary, "summary", d.Summary, "file for the number of clusters per frame")
	f.StringVar(&fl.Sizes, "sizes", "", "file for the cluster sizes per frame")
	f.StringVar(&fl.Plot, "plot", "", "image file for the plot of the number of clusters")
	f.StringVar(&fl.Metrics, "metrics", "", "file for the run metrics, in Prometheus text format")
	f.StringVar(&fl.Checkpoint, "checkpoint", "", "directory to store each frame as it is clustered")
}

// buildConfig returns the defaults, overridden by the config file, if
// given, and then by the flags that were set.
func buildConfig(cmd *cobra.Command, fl *Config, configFile string) (*Config, error) {
	c := DefaultConfig()
	if configFile != "" {
		if err := c.Load(configFile); err != nil {
			return nil, err
		}
	}
	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("structure", func() { c.Structure = fl.Structure })
	set("traj", func() { c.Traj = fl.Traj })
	set("top", func() { c.Top = fl.Top })
	set("res", func() { c.Residues = fl.Residues })
	set("query", func() { c.Query = fl.Query })
	set("min", func() { c.MinSamples = fl.MinSamples })
	set("cutoff", func() { c.Cutoff = fl.Cutoff })
	set("group", func() { c.Group = fl.Group })
	set("fast", func() { c.Fast = fl.Fast })
	set("dt", func() { c.DT = fl.DT })
	set("out", func() { c.Out = fl.Out })
	set("summary", func() { c.Summary = fl.Summary })
	set("sizes", func() { c.Sizes = fl.Sizes })
	set("plot", func() { c.Plot = fl.Plot })
	set("metrics", func() { c.Metrics = fl.Metrics })
	set("checkpoint", func() { c.Checkpoint = fl.Checkpoint })
	return c, nil
}

// Validate returns an error if the run can't be started with c.
func (c *Config) Validate() error {
	if c.Structure == "" {
		return errors.New("a structure file (-s) is required")
	}
	for _, name := range []string{c.Structure, c.Traj, c.Top} {
		if name == "" {
			continue
		}
		if _, err := os.Stat(name); err != nil {
			return fmt.Errorf("input file: %w", err)
		}
	}
	if c.Traj != "" && trajFormat(c.Traj) == "" {
		return fmt.Errorf("unsupported trajectory format: %s", c.Traj)
	}
	if len(c.Residues) == 0 && strings.TrimSpace(c.Query) == "" {
		return errors.New("no residues (--res) or query (--query) given")
	}
	if _, err := cluster.ParseGrouping(c.Group); err != nil {
		return err
	}
	o, err := c.Options()
	if err != nil {
		return err
	}
	return o.Check()
}

// Options returns the pipeline options for c.
func (c *Config) Options() (*pipeline.Options, error) {
	g, err := cluster.ParseGrouping(c.Group)
	if err != nil {
		return nil, err
	}
	o := pipeline.DefaultOptions()
	o.Residues(c.Residues)
	if c.Query != "" {
		o.Query(c.Query)
	}
	o.Cutoff(c.Cutoff)
	o.MinSamples(c.MinSamples)
	o.DT(c.DT)
	o.Grouping(g)
	if c.Fast {
		o.Mode(dist.ModeCellGrid)
	}
	sources := []string{c.Structure}
	if c.Traj != "" && c.Traj != c.Structure {
		sources = append(sources, c.Traj)
	}
	if c.Top != "" {
		sources = append(sources, c.Top)
	}
	o.Sources(sources...)
	return o, nil
}

// Outputs returns the files to write after the run.
func (c *Config) Outputs() pipeline.Outputs {
	g, _ := cluster.ParseGrouping(c.Group)
	return pipeline.Outputs{
		Traj:     c.Out,
		Summary:  c.Summary,
		Sizes:    c.Sizes,
		Grouping: g,
		Plot:     c.Plot,
		Metrics:  c.Metrics,
	}
}

// trajFormat returns the format of the trajectory name from its extension,
// or an empty string if it's not supported. STF files can end in
// .stf, .stfz, .stfl or .stfr depending on their compression, and DCD
// files can be compressed with gzip or zstd.
func trajFormat(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".gro":
		return "gro"
	case strings.HasPrefix(ext, ".stf"):
		return "stf"
	case ext == ".dcd":
		return "dcd"
	case ext == ".gz" || ext == ".zst":
		if strings.ToLower(filepath.Ext(strings.TrimSuffix(name, filepath.Ext(name)))) == ".dcd" {
			return "dcd"
		}
	}
	return ""
}
