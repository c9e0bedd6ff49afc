/*
 * stf/doc.go, part of goagg.
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
Package stf implements the simple trajectory format (STF), a compressed text
trajectory format that is easy to read and write from any language.

An STF file is ASCII text, compressed according to the last letter of its
name: zstd for .stf (and for any unknown extension), gzip for .stz, DEFLATE
for .str and LZW for .stl.

The file starts with a header of key=value lines, and the header ends with
a line with the characters "**" followed by one or more spaces and the number
of atoms per frame. The keys used here are:

	prec  number of decimal places stored for each coordinate (default 2)
	dt    time between frames, in ps (default 1)
	t0    time of the first frame, in ps (default 0)

Each frame has one line per atom with its 3 coordinates, in A, multiplied by
10^prec and rounded to integers, separated by spaces. A frame ends with a line
starting with "*", optionally followed by the box: either the 3 box edges or
the 9 components of the box vectors.
*/
package stf
