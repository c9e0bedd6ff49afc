/*
 * doc.go, part of goagg.
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

/*
Package agg is the main package of goagg, a library and program for the
analysis of aggregation in molecular dynamics trajectories.

goagg finds, frame by frame, the clusters formed by a selection of particles
(usually given by residue names), using DBSCAN over a matrix of
periodic-boundary-aware distances. Clustered particles are split into "core"
particles, which have at least a given number of neighbors within the cutoff,
and "fringe" ones.

This package provides the pieces shared by all others: the Atom and Topology
structures, selection queries, the Traj interface for trajectories, and the
error types. The work is done in the sub-packages:

	v3        coordinates (Nx3 matrices on gonum)
	dist      dense and cell-grid (sparse) distance matrices
	dbscan    density-based clustering over precomputed distances
	cluster   per-frame results, the cluster trajectory and its queries
	pipeline  the frame loop that ties everything together
	traj/gro  GROMACS gro structures and trajectories
	traj/stf  the simple trajectory format
	traj/dcd  CHARMM/NAMD DCD trajectories, optionally compressed
	top       molecule information from GROMACS topologies
	store     on-disk checkpoints of the processed frames
	histo     histograms

Distances are in Angstrom and times in ps, as read from the trajectory.
*/
package agg
