package store

import "github.com/iov-one/spades"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = spades.ReadOnlyKVStore
type SetDeleter = spades.SetDeleter
type KVStore = spades.KVStore
type Batch = spades.Batch
type Iterator = spades.Iterator
type CacheableKVStore = spades.CacheableKVStore
type KVCacheWrap = spades.KVCacheWrap
type CommitKVStore = spades.CommitKVStore
type CommitID = spades.CommitID
type Model = spades.Model

// Pair constructs a model from a key-value pair.
var Pair = spades.Pair
