// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides the durable keyed state of the ledger, with
// checkpoint-revert-commit semantics. All mutations are journaled in
// memory and hit the underlying kv store only on Commit, so an aborted
// operation leaves no trace.
package state

import (
	"encoding/binary"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/stakepoint/stakepoint/kv"
	"github.com/stakepoint/stakepoint/stackedmap"
	"github.com/stakepoint/stakepoint/stakepoint"
)

var (
	balanceBucket = []byte("b")
	storageBucket = []byte("s")
)

const readCacheSize = 2048

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// State manages the ledger state. The journal itself is guarded by mu
// so independent readers are safe against a concurrent writer; callers
// composing several accesses into one atomic operation must serialize
// on their own (the ledger does, with its operation lock).
type State struct {
	store kv.GetPutter
	cache *lru.Cache // raw reads, string key -> []byte

	mu sync.RWMutex // guards sm
	sm *stackedmap.StackedMap
}

// New create a state backed by the given kv store.
func New(store kv.GetPutter) *State {
	cache, _ := lru.New(readCacheSize)
	s := &State{
		store: store,
		cache: cache,
	}
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		return s.srcGet(key)
	})
	return s
}

type (
	balanceKey stakepoint.Address
	storageKey stakepoint.Bytes32
)

func cacheKey(bucket, key []byte) string {
	return string(bucket) + string(key)
}

func (s *State) read(bucket, key []byte) ([]byte, error) {
	ck := cacheKey(bucket, key)
	if v, ok := s.cache.Get(ck); ok {
		return v.([]byte), nil
	}
	raw, err := s.store.Get(append(append([]byte(nil), bucket...), key...))
	if err != nil {
		if s.store.IsNotFound(err) {
			s.cache.Add(ck, []byte(nil))
			return nil, nil
		}
		return nil, err
	}
	s.cache.Add(ck, raw)
	return raw, nil
}

// srcGet implements stackedmap.MapGetter.
func (s *State) srcGet(key any) (any, bool, error) {
	switch k := key.(type) {
	case balanceKey:
		raw, err := s.read(balanceBucket, k[:])
		if err != nil {
			return nil, false, err
		}
		if len(raw) == 0 {
			return uint64(0), true, nil
		}
		return binary.BigEndian.Uint64(raw), true, nil
	case storageKey:
		raw, err := s.read(storageBucket, k[:])
		if err != nil {
			return nil, false, err
		}
		return raw, true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetBalance returns asset balance for the given address.
func (s *State) GetBalance(addr stakepoint.Address) (uint64, error) {
	s.mu.RLock()
	v, _, err := s.sm.Get(balanceKey(addr))
	s.mu.RUnlock()
	if err != nil {
		return 0, &Error{err}
	}
	return v.(uint64), nil
}

// SetBalance set asset balance for the given address.
func (s *State) SetBalance(addr stakepoint.Address, balance uint64) {
	s.mu.Lock()
	s.sm.Put(balanceKey(addr), balance)
	s.mu.Unlock()
}

// GetRawStorage returns raw storage value for the given key.
func (s *State) GetRawStorage(key stakepoint.Bytes32) ([]byte, error) {
	s.mu.RLock()
	v, _, err := s.sm.Get(storageKey(key))
	s.mu.RUnlock()
	if err != nil {
		return nil, &Error{err}
	}
	return v.([]byte), nil
}

// SetRawStorage set raw storage value for the given key.
// An empty value erases the key on commit.
func (s *State) SetRawStorage(key stakepoint.Bytes32, raw []byte) {
	s.mu.Lock()
	s.sm.Put(storageKey(key), raw)
	s.mu.Unlock()
}

// EncodeStorage set storage value encoded by the given enc method.
func (s *State) EncodeStorage(key stakepoint.Bytes32, enc StorageEncoder) error {
	raw, err := enc.Encode()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(key stakepoint.Bytes32, dec StorageDecoder) error {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.mu.Lock()
	s.sm.PopTo(revision)
	s.mu.Unlock()
}

// Commit writes all journaled changes to the kv store in one batch and
// resets the journal. Either every change lands or, on batch failure,
// none does.
func (s *State) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type rawChange struct {
		bucket []byte
		key    []byte
		raw    []byte
	}
	// last write per key wins
	changes := make(map[string]*rawChange)

	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case balanceKey:
			var raw []byte
			if bal := v.(uint64); bal != 0 {
				raw = make([]byte, 8)
				binary.BigEndian.PutUint64(raw, bal)
			}
			changes[cacheKey(balanceBucket, key[:])] = &rawChange{balanceBucket, key[:], raw}
		case storageKey:
			changes[cacheKey(storageBucket, key[:])] = &rawChange{storageBucket, key[:], v.([]byte)}
		}
		return true
	})

	batch := s.store.NewBatch()
	for _, c := range changes {
		full := append(append([]byte(nil), c.bucket...), c.key...)
		if len(c.raw) == 0 {
			if err := batch.Delete(full); err != nil {
				return &Error{err}
			}
		} else {
			if err := batch.Put(full, c.raw); err != nil {
				return &Error{err}
			}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	for ck, c := range changes {
		if len(c.raw) == 0 {
			s.cache.Add(ck, []byte(nil))
		} else {
			s.cache.Add(ck, c.raw)
		}
	}
	s.sm = stackedmap.New(func(key any) (any, bool, error) {
		return s.srcGet(key)
	})
	return nil
}
