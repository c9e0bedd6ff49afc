/*
 * main.go, part of goagg.
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

// Command goagg finds aggregates of molecules along an MD trajectory, by
// DBSCAN clustering of selected atoms in each frame.
//
// Usage:
//
//	goagg run -s conf.gro -f traj.stf --res SUR --min 3 --cutoff 10 --group mol
//	goagg summary clustered_traj.msgpack.zst
//	goagg recover --checkpoint ckpt -o clustered_traj.msgpack.zst
//
// gro and stf coordinates are read in nm, DCD ones in A; all are handled
// in A. Times are in ps.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
