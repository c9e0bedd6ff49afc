/*
 * run.go, part of goagg.
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
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/pipeline"
	"github.com/rmera/goagg/store"
	gmxtop "github.com/rmera/goagg/top"
	"github.com/rmera/goagg/traj/dcd"
	"github.com/rmera/goagg/traj/gro"
	"github.com/rmera/goagg/traj/stf"
)

func newRunCmd() *cobra.Command {
	fl := &Config{}
	var configFile string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster the selected atoms in each frame of a trajectory",
		Example: `  goagg run -s conf.gro -f traj.stf --res SUR --min 3 --cutoff 10
  goagg run -s conf.gro -f traj.dcd --res SUR,DPC --plot nclusters.png
  goagg run --config run.yaml --cutoff 8 --fast --group mol -p topol.top`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildConfig(cmd, fl, configFile)
			if err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			return run(c, zap.L())
		},
	}
	addRunFlags(cmd, fl, &configFile)
	return cmd
}

// source is a trajectory that must be closed after use.
type source interface {
	agg.Traj
	Close()
}

func openTraj(name string) (source, error) {
	switch trajFormat(name) {
	case "gro":
		g, err := gro.New(name)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "stf":
		s, _, err := stf.New(name)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "dcd":
		d, err := dcd.New(name)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("unsupported trajectory format: %s", name)
}

// readSystem reads the atoms from the structure file and, if a topology is
// given, assigns them to its molecules.
func readSystem(structure, topology string) (*agg.Topology, error) {
	system, _, _, err := gro.ReadTopology(structure)
	if err != nil {
		return nil, err
	}
	if topology == "" {
		return system, nil
	}
	mols, err := gmxtop.ReadMolecules(topology)
	if err != nil {
		return nil, err
	}
	if err := gmxtop.AssignMolecules(system, mols); err != nil {
		return nil, err
	}
	return system, nil
}

func run(c *Config, logger *zap.Logger) (err error) {
	o, err := c.Options()
	if err != nil {
		return err
	}
	system, err := readSystem(c.Structure, c.Top)
	if err != nil {
		return err
	}
	trajName := c.Traj
	if trajName == "" {
		trajName = c.Structure
	}
	src, err := openTraj(trajName)
	if err != nil {
		return err
	}
	defer src.Close()

	D := pipeline.New(src, system, o)
	D.Logger = logger
	var M *pipeline.Metrics
	if c.Metrics != "" {
		M = pipeline.NewMetrics()
		D.Metrics = M
	}
	if c.Checkpoint != "" {
		S, serr := store.Open(c.Checkpoint, logger)
		if serr != nil {
			return serr
		}
		defer func() {
			if cerr := S.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		D.Sink = S
	}
	T, err := D.Run()
	if err != nil {
		if T.Len() > 0 && c.Checkpoint != "" {
			logger.Error("run failed, accepted frames are in the checkpoint",
				zap.Int("frames", T.Len()),
				zap.String("checkpoint", c.Checkpoint),
			)
		}
		return err
	}
	out := c.Outputs()
	if err := pipeline.WriteOutputs(T, system, M, out); err != nil {
		return err
	}
	logger.Info("results written",
		zap.Int("frames", T.Len()),
		zap.String("traj", out.Traj),
		zap.String("summary", out.Summary),
	)
	return nil
}
