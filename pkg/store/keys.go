package store

import (
	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// Snapshot kinds. They prefix cache keys and appear in store hook events.
const (
	KindTable   = "table"
	KindNetwork = "network"
	KindTree    = "tree"
)

// Keyer maps a snapshot kind and name to a cache key.
type Keyer interface {
	Key(kind, name string) string
}

// DefaultKeyer produces keys of the form "snapshot:<kind>:<name>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// Key returns the cache key for a snapshot.
func (DefaultKeyer) Key(kind, name string) string {
	return "snapshot:" + kind + ":" + name
}

// ScopedKeyer wraps a Keyer with a prefix, separating the snapshots of
// different projects or users that share one cache.
//
//	projectA := store.NewScopedKeyer(nil, "project:a:")
//	projectB := store.NewScopedKeyer(nil, "project:b:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// Key returns the prefixed cache key.
func (k *ScopedKeyer) Key(kind, name string) string {
	return k.prefix + k.inner.Key(kind, name)
}

// validKind rejects kinds other than the three snapshot kinds.
func validKind(kind string) error {
	switch kind {
	case KindTable, KindNetwork, KindTree:
		return nil
	}
	return oerrors.New(oerrors.ErrCodeInvalidInput, "unknown snapshot kind %q", kind)
}
