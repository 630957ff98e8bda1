package orm

import "github.com/iov-one/spades"

// Object is a keyed entry of a bucket. The bucket prefixes Key with its
// name and stores the encoded Value.
type Object interface {
	Key() []byte
	SetKey([]byte)
	Value() spades.Persistent

	// Validate is called before every write.
	Validate() error

	// Clone returns an object with the same key and an empty value of the
	// same type, ready to decode a stored value into.
	Clone() Object
}

// Model is a value that can be stored in a bucket.
type Model interface {
	spades.Persistent
	Validate() error
}
