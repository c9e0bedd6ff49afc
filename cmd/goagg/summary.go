/*
 * summary.go, part of goagg.
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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/cluster"
	"github.com/rmera/goagg/store"
)

func newSummaryCmd() *cobra.Command {
	var structure, topology, group string
	cmd := &cobra.Command{
		Use:   "summary <clustered traj>",
		Short: "Print statistics of a clustered trajectory",
		Long: `Print the number of clusters per frame and the distribution of cluster
sizes of a trajectory written by 'goagg run'. Sizes are measured with the
grouping of the run, unless --group is given. Grouping by residue or
molecule needs the structure file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			T, err := cluster.LoadFile(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("group") {
				group = T.Meta.Grouping
			}
			g, err := cluster.ParseGrouping(group)
			if err != nil {
				return err
			}
			var system agg.Atomer
			switch {
			case structure != "":
				s, err := readSystem(structure, topology)
				if err != nil {
					return err
				}
				system = s
			case g != cluster.Atom:
				return errors.New("grouping by residue or molecule needs a structure file (-s)")
			default:
				system = placeholderTop(T)
			}
			w := cmd.OutOrStdout()
			m := T.Meta
			fmt.Fprintf(w, "run %s, created %s\n", T.RunID, m.Created.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(w, "selection: %s\ncutoff: %g A, min samples: %d, %s distances, sizes by %s\n",
				m.Query, m.Cutoff, m.MinSamples, m.Mode, g)
			fmt.Fprintln(w, T.Stats(system, g).String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&structure, "structure", "s", "", "structure file (.gro) of the run")
	cmd.Flags().StringVarP(&topology, "top", "p", "", "GROMACS topology (.top) of the run")
	cmd.Flags().StringVar(&group, "group", "atom", "measure clusters by atom, res or mol")
	return cmd
}

// placeholderTop returns a topology with one anonymous atom for each id in
// T, enough to measure the clusters by atom.
func placeholderTop(T *cluster.Trajectory) *agg.Topology {
	n := 0
	for _, F := range T.Frames {
		for _, ids := range [][]int{F.CoreIDs, F.FringeIDs} {
			for _, id := range ids {
				n = max(n, id+1)
			}
		}
	}
	ats := make([]*agg.Atom, n)
	for i := range ats {
		ats[i] = &agg.Atom{ID: i + 1, MolID: i + 1, Residue: i, Molecule: i}
	}
	return agg.NewTopology(ats...)
}

func newRecoverCmd() *cobra.Command {
	var dir, out, summary string
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Rebuild a clustered trajectory from a checkpoint",
		Long: `Rebuild the clustered trajectory from the frames stored with
'goagg run --checkpoint', for instance after a crash.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			S, err := store.Open(dir, zap.L())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := S.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()
			T, err := S.Trajectory()
			if err != nil {
				return err
			}
			if err := T.SaveFile(out); err != nil {
				return err
			}
			if summary != "" {
				if err := T.WriteSummaryFile(summary); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recovered %d frames of run %s into %s\n", T.Len(), T.RunID, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "checkpoint", "", "checkpoint directory")
	cmd.Flags().StringVarP(&out, "out", "o", cluster.DefaultFile, "clustered trajectory to write")
	cmd.Flags().StringVar(&summary, "summary", "", "also write the number of clusters per frame")
	_ = cmd.MarkFlagRequired("checkpoint")
	return cmd
}
