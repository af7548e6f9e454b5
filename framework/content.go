package framework

import (
	"sync"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Capability names for the content-capture facets. Consumers that can work with
// more than one facet must probe in the order CapabilityMultiContent,
// CapabilitySingleContent, CapabilityTextContent.
const (
	CapabilityMultiContent  = "MultiContent"
	CapabilitySingleContent = "SingleContent"
	CapabilityTextContent   = "TextContent"
)

// ContentItem is one captured piece of content plus its transport metadata (for
// example the topic a message arrived on).
type ContentItem struct {
	Value    ldvalue.Value
	Metadata map[string]string
}

// ContentQueue is an unbounded, insertion-ordered queue of content items. Any
// number of producers may push concurrently from background goroutines; exactly
// one consumer - the sequential case-execution goroutine - pops. FIFO order is
// preserved among completed pushes.
type ContentQueue struct {
	items  []ContentItem
	signal chan struct{}
	lock   sync.Mutex
}

// NewContentQueue creates an empty queue.
func NewContentQueue() *ContentQueue {
	return &ContentQueue{signal: make(chan struct{}, 1)}
}

// Add appends an item. Safe for concurrent producers.
func (q *ContentQueue) Add(item ContentItem) {
	q.lock.Lock()
	q.items = append(q.items, item)
	q.lock.Unlock()
	select { // non-blocking wakeup for a consumer blocked in Take
	case q.signal <- struct{}{}:
	default:
	}
}

// Count returns the number of items currently queued.
func (q *ContentQueue) Count() int {
	q.lock.Lock()
	n := len(q.items)
	q.lock.Unlock()
	return n
}

// Take removes and returns the oldest item, blocking indefinitely until one is
// available. Only the single consumer goroutine may call it.
func (q *ContentQueue) Take() ContentItem {
	for {
		if item, ok := q.tryTake(); ok {
			return item
		}
		<-q.signal
	}
}

// TakeTimeout is like Take but gives up after the timeout, returning false.
func (q *ContentQueue) TakeTimeout(timeout time.Duration) (ContentItem, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if item, ok := q.tryTake(); ok {
			return item, true
		}
		select {
		case <-q.signal:
		case <-deadline.C:
			if item, ok := q.tryTake(); ok {
				return item, true
			}
			return ContentItem{}, false
		}
	}
}

func (q *ContentQueue) tryTake() (ContentItem, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	if len(q.items) == 0 {
		return ContentItem{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// MultiContentCapability exposes a ContentQueue as a capability of a step, so
// that later steps can reference the step and consume whatever its background
// callbacks captured.
type MultiContentCapability struct {
	baseCapability
	queue *ContentQueue
}

// NewMultiContentCapability creates the capability with an empty queue. It
// contributes no schema fragment.
func NewMultiContentCapability(run *Runner, config Config) (*MultiContentCapability, error) {
	base, err := newBaseCapability(CapabilityMultiContent, run, config, TrueSchema)
	if err != nil {
		return nil, err
	}
	return &MultiContentCapability{baseCapability: base, queue: NewContentQueue()}, nil
}

// Queue returns the capability's content queue.
func (c *MultiContentCapability) Queue() *ContentQueue {
	return c.queue
}

// Add enqueues an accepted item. Safe to call from background callbacks.
func (c *MultiContentCapability) Add(item ContentItem) {
	c.queue.Add(item)
}

// Count returns the number of items currently captured and not yet consumed.
func (c *MultiContentCapability) Count() int {
	return c.queue.Count()
}

// SingleContentCapability is a latched single-item holder: the first Set wins
// and permanently marks the holder as set; later Set calls are ignored. A step
// that captures content typically attaches both this capability and a
// MultiContentCapability, so the companion queue keeps recording every match
// while the latch keeps the first.
type SingleContentCapability struct {
	baseCapability
	item  ContentItem
	isSet bool
	lock  sync.Mutex
}

// NewSingleContentCapability creates the capability in the unset state. It
// contributes no schema fragment.
func NewSingleContentCapability(run *Runner, config Config) (*SingleContentCapability, error) {
	base, err := newBaseCapability(CapabilitySingleContent, run, config, TrueSchema)
	if err != nil {
		return nil, err
	}
	return &SingleContentCapability{baseCapability: base}, nil
}

// Set latches the item if no item has been latched yet, and reports whether this
// call won the latch.
func (c *SingleContentCapability) Set(item ContentItem) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.isSet {
		return false
	}
	c.item = item
	c.isSet = true
	return true
}

// Get returns the latched item and whether anything has been latched.
func (c *SingleContentCapability) Get() (ContentItem, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.item, c.isSet
}

// TextContentCapability is a latched holder for raw text, used for captured
// response bodies that are not necessarily JSON.
type TextContentCapability struct {
	baseCapability
	text  string
	isSet bool
	lock  sync.Mutex
}

// NewTextContentCapability creates the capability in the unset state.
func NewTextContentCapability(run *Runner, config Config) (*TextContentCapability, error) {
	base, err := newBaseCapability(CapabilityTextContent, run, config, TrueSchema)
	if err != nil {
		return nil, err
	}
	return &TextContentCapability{baseCapability: base}, nil
}

// Set latches the text if nothing has been latched yet, and reports whether this
// call won the latch.
func (c *TextContentCapability) Set(text string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.isSet {
		return false
	}
	c.text = text
	c.isSet = true
	return true
}

// Get returns the latched text and whether anything has been latched.
func (c *TextContentCapability) Get() (string, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.text, c.isSet
}
