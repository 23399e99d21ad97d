// SPDX-License-Identifier: GPL-3.0-or-later

package vrouter

import "context"

// Store is a per-node blocking handle over a single replica's key-value
// surface. Implementations are obtained from an external registry keyed by
// [Node.ID]; this package does not construct or own them.
type Store interface {
	// Get returns the value(s) currently associated with key on this node.
	Get(ctx context.Context, key Key) (any, error)

	// Put writes value under key on this node.
	Put(ctx context.Context, key Key, value any) (any, error)

	// Delete removes key from this node.
	Delete(ctx context.Context, key Key) (any, error)
}

// StoreRequest is a caller-supplied closure encoding which Store operation
// to perform against a given Node: a get, a getAll, a put, a delete, and so
// on. It is the sole point of operation-specificity in
// [PerformSerialRequests]; the Action itself has no knowledge of which
// verb is being issued.
type StoreRequest func(ctx context.Context, node Node, store Store) (any, error)
