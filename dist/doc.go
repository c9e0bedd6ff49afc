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
Package dist builds pairwise-distance representations of a set of points in
a (possibly) periodic, orthorhombic simulation box, to be used as precomputed
input for clustering.

Two representations are available: a dense, symmetric NxN matrix (Dense),
and a sparse, compressed-row matrix (Sparse) holding only the pairs within a
cutoff, which is built with a cell grid in sub-quadratic average time.

All distances follow the minimum image convention when a box is given.
A box with fewer than 3 elements is an error; a box with any non-positive
edge, or a nil box, means no periodicity.
*/
package dist
