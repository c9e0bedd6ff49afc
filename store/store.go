/*
 * store.go, part of goagg.
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

// Package store keeps the frames of a clustering run in a badger database
// as they are produced, so a run that dies before writing its output can be
// recovered.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	agg "github.com/rmera/goagg"
	"github.com/rmera/goagg/cluster"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

var (
	framePrefix = []byte("f/")
	headerKey   = []byte("h")
)

// ErrNoHeader is returned by Trajectory when the store has no run header.
var ErrNoHeader = errors.New("store: no run header")

// Store is a checkpoint store.
type Store struct {
	db  *badger.DB
	dir string
}

// header is what is kept of a trajectory, besides its frames.
type header struct {
	RunID string       `msgpack:"run_id"`
	Meta  cluster.Meta `msgpack:"meta"`
}

// zapLogger sends badger's messages to a zap logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (z zapLogger) Errorf(f string, a ...any)   { z.s.Errorf(f, a...) }
func (z zapLogger) Warningf(f string, a ...any) { z.s.Warnf(f, a...) }
func (z zapLogger) Infof(f string, a ...any)    { z.s.Debugf(f, a...) } //badger is chatty
func (z zapLogger) Debugf(f string, a ...any)   { z.s.Debugf(f, a...) }

// Open opens (creating it if needed) the store in the directory dir.
// badger's messages go to logger, if given.
func Open(dir string, logger ...*zap.Logger) (*Store, error) {
	if dir == "" {
		return nil, agg.NewError("No directory given for the checkpoint store", "store.Open")
	}
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	opts := badger.DefaultOptions(dir).WithLogger(zapLogger{l.Named("badger").Sugar()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, agg.WrapError(err, "store.Open").InFile(dir)
	}
	return &Store{db: db, dir: dir}, nil
}

func frameKey(i int) []byte {
	k := make([]byte, len(framePrefix)+8)
	copy(k, framePrefix)
	binary.BigEndian.PutUint64(k[len(framePrefix):], uint64(i))
	return k
}

// Put stores F as the ith accepted frame, replacing any previous ith frame.
func (S *Store) Put(i int, F *cluster.Frame) error {
	if i < 0 {
		return agg.NewError(fmt.Sprintf("Negative frame index %d", i), "Store.Put")
	}
	v, err := msgpack.Marshal(F)
	if err != nil {
		return agg.WrapError(err, "Store.Put")
	}
	err = S.db.Update(func(txn *badger.Txn) error {
		return txn.Set(frameKey(i), v)
	})
	if err != nil {
		return agg.WrapError(err, "Store.Put").InFile(S.dir)
	}
	return nil
}

// PutHeader stores the run ID and metadata of T, but not its frames. If the
// store holds the header of a different run, that run's frames are dropped.
func (S *Store) PutHeader(T *cluster.Trajectory) error {
	v, err := msgpack.Marshal(header{RunID: T.RunID, Meta: T.Meta})
	if err != nil {
		return agg.WrapError(err, "Store.PutHeader")
	}
	old, err := S.header()
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return agg.WrapError(err, "Store.PutHeader").InFile(S.dir)
	case old.RunID != T.RunID:
		if err := S.db.DropPrefix(framePrefix); err != nil {
			return agg.WrapError(err, "Store.PutHeader").InFile(S.dir)
		}
	}
	err = S.db.Update(func(txn *badger.Txn) error {
		return txn.Set(headerKey, v)
	})
	if err != nil {
		return agg.WrapError(err, "Store.PutHeader").InFile(S.dir)
	}
	return nil
}

func (S *Store) header() (header, error) {
	var h header
	err := S.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(headerKey)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error { return msgpack.Unmarshal(v, &h) })
	})
	return h, err
}

// Frames returns all the stored frames, in index order.
func (S *Store) Frames() ([]*cluster.Frame, error) {
	ret := make([]*cluster.Frame, 0, 64)
	err := S.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = framePrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(framePrefix); it.ValidForPrefix(framePrefix); it.Next() {
			F := new(cluster.Frame)
			err := it.Item().Value(func(v []byte) error {
				return msgpack.Unmarshal(v, F)
			})
			if err != nil {
				return fmt.Errorf("frame %d: %w", binary.BigEndian.Uint64(it.Item().Key()[len(framePrefix):]), err)
			}
			ret = append(ret, F)
		}
		return nil
	})
	if err != nil {
		return nil, agg.WrapError(err, "Store.Frames").InFile(S.dir)
	}
	return ret, nil
}

// Trajectory rebuilds the trajectory from the stored header and frames.
func (S *Store) Trajectory() (*cluster.Trajectory, error) {
	h, err := S.header()
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, agg.WrapError(ErrNoHeader, "Store.Trajectory").InFile(S.dir)
	}
	if err != nil {
		return nil, agg.WrapError(err, "Store.Trajectory").InFile(S.dir)
	}
	frames, err := S.Frames()
	if err != nil {
		return nil, agg.ErrDecorate(err, "Store.Trajectory")
	}
	return &cluster.Trajectory{RunID: h.RunID, Meta: h.Meta, Frames: frames}, nil
}

// Close closes the database.
func (S *Store) Close() error {
	if err := S.db.Close(); err != nil {
		return agg.WrapError(err, "Store.Close").InFile(S.dir)
	}
	return nil
}
