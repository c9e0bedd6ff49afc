/*
 * compressed.go, part of goagg.
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

package dcd

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// decompressor returns the function that wraps the file name to read it,
// deduced from its extension: .gz (gzip), .zst (zstd) or .dcd (none).
// Unknown extensions are logged and read as plain DCD.
func decompressor(name string) func(io.Reader) (io.ReadCloser, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".gz":
		return func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) }
	case ".zst":
		return func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return zstdReadCloser{d}, nil
		}
	case ".dcd":
	default:
		zap.L().Warn("unknown DCD extension, reading as plain DCD", zap.String("file", name), zap.String("ext", ext))
	}
	return func(r io.Reader) (io.ReadCloser, error) { return nopCloser{r}, nil }
}
