package saturation

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/elgo/internal/container"
	"github.com/hupe1980/elgo/ontology"
)

// State is the saturation state of an ontology: the contexts created so far,
// the ready queue and the accumulated rule statistics.
//
// Run may be called from one goroutine at a time. All other methods must not
// run concurrently with Run.
type State struct {
	idx      *ontology.Index
	logger   *slog.Logger
	contexts *container.SegmentedArray[Context]
	ready    *readyQueue
	counts   counters
}

// NewState creates an empty saturation state over idx.
func NewState(idx *ontology.Index, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &State{
		idx:      idx,
		logger:   logger,
		contexts: container.NewSegmentedArray[Context](),
		ready:    newReadyQueue(),
	}
}

// Index returns the indexed ontology the state saturates.
func (s *State) Index() *ontology.Index { return s.idx }

// Context returns the context of root, or nil if it does not exist.
func (s *State) Context(root ontology.ID) *Context {
	return s.contexts.Load(root)
}

// Ensure returns the context of root, creating and scheduling it for
// initialization if it does not exist yet.
func (s *State) Ensure(root ontology.ID) *Context {
	c, loaded := s.contexts.LoadOrStore(root, func() *Context { return newContext(root) })
	if !loaded {
		s.produce(c, Conclusion{Kind: ContextInit})
	}
	return c
}

// EnsureAll creates the contexts of owl:Thing and every named class.
func (s *State) EnsureAll() {
	s.Ensure(ontology.Thing)
	for _, id := range s.idx.Classes() {
		s.Ensure(id)
	}
}

// Range calls fn for every context in root order until fn returns false.
func (s *State) Range(fn func(c *Context) bool) {
	s.contexts.Range(func(_ uint32, c *Context) bool { return fn(c) })
}

// NumContexts returns the number of contexts created so far.
func (s *State) NumContexts() int { return s.contexts.Len() }

// Backlog returns the number of contexts waiting for a worker.
func (s *State) Backlog() int { return s.ready.backlog() }

// IsQuiescent reports whether every context is saturated.
func (s *State) IsQuiescent() bool { return s.ready.quiescent() }

// RuleCounts returns the accumulated rule applications of all runs.
func (s *State) RuleCounts() RuleCounts { return s.counts.snapshot() }

// IsConsistent reports whether owl:Thing is satisfiable. It is only meaningful
// after a complete run.
func (s *State) IsConsistent() bool {
	c := s.Context(ontology.Thing)
	return c == nil || !c.IsInconsistent()
}

// Reset discards every context. Rule statistics are kept.
func (s *State) Reset() {
	s.contexts = container.NewSegmentedArray[Context]()
	s.ready.reset()
}

// InvalidationStats describes the effect of Invalidate.
type InvalidationStats struct {
	// Seeds is the number of contexts that derived a premise of a retracted axiom.
	Seeds int
	// Invalidated is the total number of contexts that were reset.
	Invalidated int
}

// Invalidate prepares the state for a change of non-role axioms. removed and
// added hold the premises of the retracted and asserted axioms.
//
// Contexts that derived a removed premise are reset together with every
// context that transitively links into them, since their conclusions may
// depend on the retracted axioms. Contexts that derived an added premise are
// reset so the new axioms are applied on re-initialization. Backward links from
// kept contexts into reset contexts survive the reset; links from reset
// contexts are dropped everywhere and re-derived.
//
// Invalidate must be called on a quiescent state before the index is changed.
func (s *State) Invalidate(removed, added []ontology.ID) (InvalidationStats, error) {
	if !s.ready.quiescent() {
		return InvalidationStats{}, ErrNotQuiescent
	}

	rem := roaring.BitmapOf(removed...)
	affected := roaring.New()
	var stack []ontology.ID
	if !rem.IsEmpty() {
		s.contexts.Range(func(id uint32, c *Context) bool {
			if c.subsumers.Intersects(rem) {
				affected.Add(id)
				stack = append(stack, id)
			}
			return true
		})
	}
	seeds := int(affected.GetCardinality())

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := s.contexts.Load(id)
		if c == nil {
			continue
		}
		c.Predecessors(func(src ontology.ID) {
			if affected.CheckedAdd(src) {
				stack = append(stack, src)
			}
		})
	}

	if len(added) > 0 {
		add := roaring.BitmapOf(added...)
		s.contexts.Range(func(id uint32, c *Context) bool {
			if c.subsumers.Intersects(add) {
				affected.Add(id)
			}
			return true
		})
	}

	if affected.IsEmpty() {
		return InvalidationStats{}, nil
	}

	s.contexts.Range(func(id uint32, c *Context) bool {
		if affected.Contains(id) {
			c.reset(affected)
			s.produce(c, Conclusion{Kind: ContextInit})
		} else {
			c.dropLinksFrom(affected)
		}
		return true
	})

	st := InvalidationStats{Seeds: seeds, Invalidated: int(affected.GetCardinality())}
	s.logger.Debug("contexts invalidated", "seeds", st.Seeds, "invalidated", st.Invalidated)
	return st, nil
}

// produce appends a conclusion to c and schedules c if it became Queued.
func (s *State) produce(c *Context, concl Conclusion) {
	if c.push(concl) {
		s.ready.push(c)
	}
}
