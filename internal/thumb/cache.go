// Package thumb generates and caches preview images for (path, frame,
// reformat-mode) keys without blocking the interactive caller.
//
// Generation runs on a small fixed pool of workers. At most one generation
// is ever in flight per key; concurrent requesters attach to the existing
// record and observe the same eventual result. Completed work for a key the
// user has since navigated away from is never cancelled mid-flight; callers
// are expected to compare a fulfilled handle's key against their current
// key before displaying it.
package thumb

import (
	"container/list"
	"image"
	"os"
	"sync"

	// Register decoders for the formats preview sources commonly use.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-logr/logr"
)

// State is the lifecycle state of one cached thumbnail.
type State int

const (
	Pending State = iota
	Ready
	Failed
)

// Key identifies one thumbnail: a concrete frame file mapped with one
// reformat mode.
type Key struct {
	Path  string
	Frame int
	Mode  Mode
}

// record is the cache-owned entry for a key.
type record struct {
	key Key
	// state, img and err are guarded by the cache mutex until done is
	// closed, after which they are immutable.
	state State
	img   image.Image
	err   error
	done  chan struct{}
	elem  *list.Element
}

// Handle is the caller's view of a cache entry. It never exposes mutable
// cache internals; the image payload is owned by the cache and must be
// treated as read-only.
type Handle struct {
	c   *Cache
	rec *record
}

// Key returns the key this handle was requested for.
func (h *Handle) Key() Key { return h.rec.key }

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.rec.state
}

// Done returns a channel closed when generation completes, successfully or
// not. Entries that were already Ready or Failed have a closed channel.
func (h *Handle) Done() <-chan struct{} { return h.rec.done }

// Image returns the generated image, or nil while Pending or after failure.
func (h *Handle) Image() image.Image {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if h.rec.state != Ready {
		return nil
	}
	return h.rec.img
}

// Err returns the generation error for a Failed entry, or nil.
func (h *Handle) Err() error {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return h.rec.err
}

// Options configures a Cache.
type Options struct {
	// Width and Height are the fixed preview canvas dimensions.
	Width, Height uint
	// Workers is the size of the generation pool.
	Workers int
	// Capacity bounds the number of retained entries; least recently
	// accessed entries are evicted beyond it. Pending entries are never
	// evicted.
	Capacity int
	// Load overrides how source images are read, used by tests. The
	// default opens and decodes the file at the key's path.
	Load func(path string) (image.Image, error)
}

const (
	defaultWidth    = 192
	defaultHeight   = 108
	defaultWorkers  = 4
	defaultCapacity = 256
)

// Cache is a bounded, internally synchronized thumbnail cache.
type Cache struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries map[Key]*record
	// lru orders evictable records, most recently accessed at the front.
	lru  *list.List
	opts Options
	// queue holds records awaiting generation, oldest first. It is
	// unbounded; Request must never wait on the worker pool.
	queue  []*record
	closed bool
	wg     sync.WaitGroup
	log    logr.Logger
}

// New starts a Cache and its worker pool. Call Close to stop the workers.
func New(opts Options, log logr.Logger) *Cache {
	if opts.Width == 0 {
		opts.Width = defaultWidth
	}
	if opts.Height == 0 {
		opts.Height = defaultHeight
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Capacity <= 0 {
		opts.Capacity = defaultCapacity
	}
	if opts.Load == nil {
		opts.Load = loadImage
	}
	c := &Cache{
		entries: make(map[Key]*record),
		lru:     list.New(),
		opts:    opts,
		log:     log,
	}
	c.cond = sync.NewCond(&c.mu)
	for i := 0; i < opts.Workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	return c
}

// Close stops the worker pool after draining queued work.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()
	c.wg.Wait()
}

// Request returns a handle for key without blocking. A hit returns the
// existing record in whatever state it is in; a miss enqueues generation
// and returns a Pending handle.
func (c *Cache) Request(key Key) *Handle {
	c.mu.Lock()
	if rec, ok := c.entries[key]; ok {
		if rec.elem != nil {
			c.lru.MoveToFront(rec.elem)
		}
		c.mu.Unlock()
		return &Handle{c: c, rec: rec}
	}

	rec := &record{key: key, state: Pending, done: make(chan struct{})}
	c.entries[key] = rec
	c.evictLocked()
	c.queue = append(c.queue, rec)
	c.cond.Signal()
	c.mu.Unlock()
	return &Handle{c: c, rec: rec}
}

// evictLocked drops least-recently-accessed completed entries until the
// cache is within capacity. Pending entries carry no list element and are
// not candidates.
func (c *Cache) evictLocked() {
	for len(c.entries) > c.opts.Capacity {
		back := c.lru.Back()
		if back == nil {
			return
		}
		victim := back.Value.(*record)
		c.lru.Remove(back)
		delete(c.entries, victim.key)
	}
}

// worker generates queued thumbnails until Close, finishing queued work
// before exiting.
func (c *Cache) worker() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closed {
			c.cond.Wait()
		}
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		rec := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		img, err := c.generate(rec.key)

		c.mu.Lock()
		if err != nil {
			rec.state = Failed
			rec.err = err
			c.log.V(1).Info("thumbnail generation failed",
				"path", rec.key.Path, "frame", rec.key.Frame, "reason", err.Error())
		} else {
			rec.state = Ready
			rec.img = img
		}
		rec.elem = c.lru.PushFront(rec)
		c.mu.Unlock()
		close(rec.done)
	}
}

// generate produces the final canvas image for key.
func (c *Cache) generate(key Key) (image.Image, error) {
	src, err := c.opts.Load(key.Path)
	if err != nil {
		return nil, err
	}
	return Reformat(src, c.opts.Width, c.opts.Height, key.Mode), nil
}

// loadImage is the default source loader.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
