package cache

import "context"

// TreeCache memoizes assembled subtree reads. Any hierarchy write calls
// Invalidate, which retires every cached subtree at once; entries are
// namespaced by a generation counter, so staleness after a move is bounded
// by one counter read.
type TreeCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any) error
	Invalidate(ctx context.Context) error
	Close() error
}

// Noop serves deployments without a cache backend: every read misses.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, any) error         { return nil }
func (Noop) Invalidate(context.Context) error               { return nil }
func (Noop) Close() error                                   { return nil }
