package saturation

import (
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/elgo/ontology"
)

// Activation is the scheduling state of a Context.
type Activation int32

const (
	// Inactive contexts have never been scheduled or were reset.
	Inactive Activation = iota
	// Queued contexts sit on the ready queue with pending conclusions.
	Queued
	// Processing contexts are held by exactly one worker.
	Processing
	// Saturated contexts have an empty queue and no owner.
	Saturated
)

func (a Activation) String() string {
	switch a {
	case Inactive:
		return "inactive"
	case Queued:
		return "queued"
	case Processing:
		return "processing"
	case Saturated:
		return "saturated"
	default:
		return "unknown"
	}
}

// Context is the inference workspace of one root expression.
//
// The pending queue and the activation state are shared with producers and
// guarded by mu. Everything else is owned by the worker that holds the context
// in the Processing state, or by the caller between runs.
type Context struct {
	root  ontology.ID
	state atomic.Int32

	mu    sync.Mutex
	queue []Conclusion
	head  int

	initialized  bool
	subsumers    *roaring.Bitmap
	propagations *roaring.Bitmap
	backward     map[ontology.RoleID]*roaring.Bitmap
	forward      map[ontology.RoleID]*roaring.Bitmap
	disjoint     map[int32]ontology.ID
}

func newContext(root ontology.ID) *Context {
	c := &Context{root: root}
	c.clear()
	return c
}

func (c *Context) clear() {
	c.initialized = false
	c.subsumers = roaring.New()
	c.propagations = roaring.New()
	c.backward = make(map[ontology.RoleID]*roaring.Bitmap)
	c.forward = make(map[ontology.RoleID]*roaring.Bitmap)
	c.disjoint = make(map[int32]ontology.ID)
}

// Root returns the expression this context saturates.
func (c *Context) Root() ontology.ID { return c.root }

// Activation returns the current scheduling state.
func (c *Context) Activation() Activation { return Activation(c.state.Load()) }

// IsSaturated reports whether the context has no pending work and no owner.
func (c *Context) IsSaturated() bool { return c.Activation() == Saturated }

// Subsumers returns the derived subsumer set. The bitmap must not be modified
// and must only be read while no run is in progress.
func (c *Context) Subsumers() *roaring.Bitmap { return c.subsumers }

// IsInconsistent reports whether owl:Nothing has been derived.
func (c *Context) IsInconsistent() bool { return c.subsumers.Contains(ontology.Nothing) }

// Predecessors calls fn for every source of a backward link into this context.
func (c *Context) Predecessors(fn func(src ontology.ID)) {
	for _, srcs := range c.backward {
		it := srcs.Iterator()
		for it.HasNext() {
			fn(it.Next())
		}
	}
}

// push appends a conclusion and reports whether the context must be put on the
// ready queue by the caller.
func (c *Context) push(concl Conclusion) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, concl)
	switch Activation(c.state.Load()) {
	case Inactive, Saturated:
		c.state.Store(int32(Queued))
		return true
	default:
		return false
	}
}

// next pops the oldest pending conclusion. When the queue is empty the context
// moves to Saturated while still holding the queue lock, so no producer can
// observe Processing with an unprocessed conclusion behind it.
func (c *Context) next() (Conclusion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.head == len(c.queue) {
		c.queue = c.queue[:0]
		c.head = 0
		c.state.Store(int32(Saturated))
		return Conclusion{}, false
	}
	concl := c.queue[c.head]
	c.queue[c.head] = Conclusion{}
	c.head++
	return concl, true
}

// suspend returns a claimed context to the Queued state without draining it.
func (c *Context) suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Store(int32(Queued))
}

// pending returns the number of unprocessed conclusions.
func (c *Context) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue) - c.head
}

// reset discards all derived facts and pending conclusions, keeping backward
// links whose source is not in drop. It must only be called between runs.
func (c *Context) reset(drop *roaring.Bitmap) {
	backward := c.backward
	c.clear()
	for role, srcs := range backward {
		kept := roaring.AndNot(srcs, drop)
		if !kept.IsEmpty() {
			c.backward[role] = kept
		}
	}

	c.mu.Lock()
	c.queue = c.queue[:0]
	c.head = 0
	if Activation(c.state.Load()) != Queued {
		c.state.Store(int32(Inactive))
	}
	c.mu.Unlock()
}

// dropLinksFrom removes backward links whose source is in drop.
func (c *Context) dropLinksFrom(drop *roaring.Bitmap) {
	for role, srcs := range c.backward {
		srcs.AndNot(drop)
		if srcs.IsEmpty() {
			delete(c.backward, role)
		}
	}
}

func (c *Context) addBackward(role ontology.RoleID, src ontology.ID) bool {
	bm := c.backward[role]
	if bm == nil {
		bm = roaring.New()
		c.backward[role] = bm
	}
	return bm.CheckedAdd(src)
}

func (c *Context) addForward(role ontology.RoleID, dst ontology.ID) bool {
	bm := c.forward[role]
	if bm == nil {
		bm = roaring.New()
		c.forward[role] = bm
	}
	return bm.CheckedAdd(dst)
}
