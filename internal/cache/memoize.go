package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Lookup outcomes reported to an Observer.
const (
	OutcomeHit         = "hit"
	OutcomeNegativeHit = "negative_hit"
	OutcomeMiss        = "miss"
)

// ErrNoStore, returned by a Func (possibly wrapped), hands the Func's value
// and found flag to callers without caching them.
var ErrNoStore = errors.New("result not stored")

// abandoned wraps the error of an execution whose leader's context ended.
type abandoned struct {
	err error
}

func (a *abandoned) Error() string { return a.err.Error() }

func (a *abandoned) Unwrap() error { return a.err }

// Observer receives memoizer lookup outcomes.
type Observer interface {
	ObserveCacheLookup(name, outcome string)
}

// Func is a resolution that reports whether it found a value. A false
// result with a nil error is a definitive "not found".
type Func[T any] func(ctx context.Context) (T, bool, error)

// MemoOptions configure a Memoizer.
type MemoOptions struct {
	TTL time.Duration
	// Negative enables caching of "not found" results for NegativeTTL.
	Negative    bool
	NegativeTTL time.Duration
	Observer    Observer
}

// Memoizer caches the results of one named resolution function in a shared
// Cache. Concurrent calls with the same key share a single execution.
type Memoizer[T any] struct {
	cache *Cache
	name  string
	opts  MemoOptions
	group singleflight.Group
}

type memoResult[T any] struct {
	value T
	found bool
}

// NewMemoizer creates a memoizer whose keys are prefixed with name.
func NewMemoizer[T any](c *Cache, name string, opts MemoOptions) *Memoizer[T] {
	return &Memoizer[T]{cache: c, name: name, opts: opts}
}

// Key derives the cache key for a function name and argument tuple.
func Key(name string, args ...any) string {
	var b strings.Builder
	b.WriteString(name)
	for _, arg := range args {
		b.WriteByte('|')
		if s, ok := arg.(string); ok {
			b.WriteString(strconv.Quote(s))
			continue
		}
		fmt.Fprint(&b, arg)
	}
	return b.String()
}

// Key returns the cache key this memoizer uses for args.
func (m *Memoizer[T]) Key(args ...any) string {
	return Key(m.name, args...)
}

// Forget removes the cached result for args.
func (m *Memoizer[T]) Forget(args ...any) {
	m.cache.Delete(m.Key(args...))
}

// Do returns the cached result for args or runs fn to produce it. Errors are
// never cached. A caller whose context ends stops waiting immediately; the
// remaining callers of an execution abandoned that way retry it themselves.
// Any other error, including a client timeout, is returned to every caller.
func (m *Memoizer[T]) Do(ctx context.Context, fn Func[T], args ...any) (T, bool, error) {
	var zero T
	key := m.Key(args...)

	if r, ok := m.lookup(key); ok {
		return r.value, r.found, nil
	}
	m.observe(OutcomeMiss)

	for {
		ch := m.group.DoChan(key, func() (any, error) {
			if r, ok := m.peek(key); ok {
				return r, nil
			}
			value, found, err := fn(ctx)
			if errors.Is(err, ErrNoStore) {
				return memoResult[T]{value: value, found: found}, nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return nil, &abandoned{err: err}
				}
				return nil, err
			}
			m.store(key, value, found)
			return memoResult[T]{value: value, found: found}, nil
		})

		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				var a *abandoned
				if errors.As(res.Err, &a) {
					if ctx.Err() == nil {
						continue
					}
					return zero, false, ctx.Err()
				}
				return zero, false, res.Err
			}
			r := res.Val.(memoResult[T])
			return r.value, r.found, nil
		}
	}
}

func (m *Memoizer[T]) lookup(key string) (memoResult[T], bool) {
	r, ok := m.peek(key)
	if !ok {
		return r, false
	}
	if r.found {
		m.observe(OutcomeHit)
	} else {
		m.observe(OutcomeNegativeHit)
	}
	return r, true
}

func (m *Memoizer[T]) peek(key string) (memoResult[T], bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return memoResult[T]{}, false
	}
	if IsNotFound(v) {
		return memoResult[T]{}, true
	}
	typed, ok := v.(T)
	if !ok {
		return memoResult[T]{}, false
	}
	return memoResult[T]{value: typed, found: true}, true
}

func (m *Memoizer[T]) store(key string, value T, found bool) {
	if found {
		m.cache.Set(key, value, m.opts.TTL)
		return
	}
	if m.opts.Negative {
		m.cache.SetNotFound(key, m.opts.NegativeTTL)
	}
}

func (m *Memoizer[T]) observe(outcome string) {
	if m.opts.Observer != nil {
		m.opts.Observer.ObserveCacheLookup(m.name, outcome)
	}
}
