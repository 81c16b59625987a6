package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/codegen-studio/engine/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key identifies a cached read. Its segments joined with "/" form the path
// that is fetched.
type Key []string

func (k Key) Path() string { return strings.Join(k, "/") }

// HasPrefix reports whether prefix matches the leading segments of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// State tells how an entry's data came to be.
type State int

const (
	// StateOK holds the server's answer.
	StateOK State = iota
	// StateEmpty is a sequence endpoint that failed with an HTTP error.
	StateEmpty
	// StateAbsent is a single endpoint that failed, or a 401 when the cache
	// treats 401 as absent.
	StateAbsent
	// StateUnavailable means the server could not be reached.
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateEmpty:
		return "empty"
	case StateAbsent:
		return "absent"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Entry is one cached read. Data is nil when absent.
type Entry struct {
	Data      json.RawMessage
	State     State
	Err       error
	FetchedAt time.Time
}

// Decode unmarshals Data into v, leaving v untouched when there is no data.
func (e Entry) Decode(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "decode cached data failed")
	}
	return nil
}

// UnauthorizedBehavior selects how reads treat a 401.
type UnauthorizedBehavior int

const (
	// Unauthorized401Degrade treats a 401 like any other HTTP failure.
	Unauthorized401Degrade UnauthorizedBehavior = iota
	// Unauthorized401Absent answers every 401 with an absent entry.
	Unauthorized401Absent
)

// Query describes one polling consumer. A zero Interval fetches once and then
// only on invalidation.
type Query struct {
	Key      Key
	Interval time.Duration
	Enabled  bool
}

type cacheItem struct {
	key   Key
	entry Entry
}

type watcher struct {
	key  Key
	wake chan struct{}
}

// Cache stores reads by key. Values never expire by age; they change only
// when a consumer polls or a key is invalidated. Safe for concurrent use.
type Cache struct {
	client Requester
	shapes ShapeTable
	on401  UnauthorizedBehavior
	now    func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	entries  map[string]cacheItem
	watchers map[*watcher]struct{}
	// keys and gens track every path ever fetched; Invalidate bumps the
	// generation so older in-flight fetches are neither joined nor stored.
	keys map[string]Key
	gens map[string]uint64
}

type CacheOption func(*Cache)

func WithShapes(t ShapeTable) CacheOption {
	return func(c *Cache) { c.shapes = t }
}

func WithUnauthorized(b UnauthorizedBehavior) CacheOption {
	return func(c *Cache) { c.on401 = b }
}

func NewCache(client Requester, opts ...CacheOption) *Cache {
	c := &Cache{
		client:   client,
		shapes:   DefaultShapes,
		on401:    Unauthorized401Degrade,
		now:      time.Now,
		entries:  map[string]cacheItem{},
		watchers: map[*watcher]struct{}{},
		keys:     map[string]Key{},
		gens:     map[string]uint64{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Peek returns the cached entry without fetching.
func (c *Cache) Peek(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.entries[key.Path()]
	return item.entry, ok
}

// Get returns the cached entry, fetching it when missing or unavailable.
func (c *Cache) Get(ctx context.Context, key Key) (Entry, error) {
	if e, ok := c.Peek(key); ok && e.State != StateUnavailable {
		return e, nil
	}
	return c.Fetch(ctx, key)
}

// Fetch reads key from the server and stores the result. Concurrent fetches
// of one key share a single request unless the key was invalidated in
// between. The only error is cancellation of ctx.
func (c *Cache) Fetch(ctx context.Context, key Key) (Entry, error) {
	path := key.Path()
	c.mu.Lock()
	if _, ok := c.keys[path]; !ok {
		c.keys[path] = append(Key(nil), key...)
	}
	gen := c.gens[path]
	c.mu.Unlock()

	v, err, _ := c.group.Do(flightKey(path, gen), func() (any, error) {
		e, err := c.load(ctx, path)
		if err != nil {
			return Entry{}, err
		}
		c.mu.Lock()
		if c.gens[path] == gen {
			c.entries[path] = cacheItem{key: append(Key(nil), key...), entry: e}
		}
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return v.(Entry), nil
}

func flightKey(path string, gen uint64) string {
	return path + "#" + strconv.FormatUint(gen, 10)
}

func (c *Cache) load(ctx context.Context, path string) (Entry, error) {
	shape := c.shapes.Lookup(path)
	resp, err := c.client.Request(ctx, http.MethodGet, path, nil)
	if err == nil {
		defer resp.Body.Close()
		body, rerr := io.ReadAll(resp.Body)
		if rerr != nil || !json.Valid(body) {
			if rerr == nil {
				rerr = errors.New("invalid json body")
			}
			return c.degraded(shape, StateUnavailable, rerr), nil
		}
		return Entry{Data: body, State: StateOK, FetchedAt: c.now()}, nil
	}

	if ctx.Err() != nil {
		return Entry{}, ctx.Err()
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Status == http.StatusUnauthorized && c.on401 == Unauthorized401Absent {
			return Entry{State: StateAbsent, Err: err, FetchedAt: c.now()}, nil
		}
		logger.L().Debug("read degraded", zap.String("path", path), zap.Int("status", httpErr.Status))
		if shape == ShapeSequence {
			return c.degraded(shape, StateEmpty, err), nil
		}
		return c.degraded(shape, StateAbsent, err), nil
	}
	return c.degraded(shape, StateUnavailable, err), nil
}

func (c *Cache) degraded(shape Shape, state State, err error) Entry {
	return Entry{Data: shape.ZeroValue(), State: state, Err: err, FetchedAt: c.now()}
}

// Invalidate drops every entry whose key starts with prefix and wakes the
// watchers of those keys so they refetch. Fetches already in flight for those
// keys still answer their callers but no longer fill the cache.
func (c *Cache) Invalidate(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, key := range c.keys {
		if !key.HasPrefix(prefix) {
			continue
		}
		c.group.Forget(flightKey(path, c.gens[path]))
		c.gens[path]++
		delete(c.entries, path)
	}
	for w := range c.watchers {
		if w.key.HasPrefix(prefix) {
			select {
			case w.wake <- struct{}{}:
			default:
			}
		}
	}
}

// Watch delivers q's entry to fn: first from the cache when present, then on
// every tick of q.Interval and after every invalidation of the key. It blocks
// until ctx is done. A fetch running when ctx ends still completes and fills
// the cache, but fn is not called with its result.
func (c *Cache) Watch(ctx context.Context, q Query, fn func(Entry, error)) {
	if !q.Enabled || len(q.Key) == 0 {
		return
	}
	w := &watcher{key: append(Key(nil), q.Key...), wake: make(chan struct{}, 1)}
	c.mu.Lock()
	c.watchers[w] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.watchers, w)
		c.mu.Unlock()
	}()

	detached := context.WithoutCancel(ctx)
	poll := func(fetch func(context.Context, Key) (Entry, error)) {
		e, err := fetch(detached, q.Key)
		if ctx.Err() != nil {
			return
		}
		fn(e, err)
	}

	poll(c.Get)

	var tick <-chan time.Time
	if q.Interval > 0 {
		t := time.NewTicker(q.Interval)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			poll(c.Fetch)
		case <-w.wake:
			poll(c.Fetch)
		}
	}
}
