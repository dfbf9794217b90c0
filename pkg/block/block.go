// Package block defines the block contract and the composition helpers that
// turn independent data sources into bar segments. A block owns exactly one
// piece of rendered text; it recomputes on its own trigger (periodic tick,
// subscribed event, or addressed refresh) and notifies its observer only
// when the text actually changed. Shared behaviour such as scheduling,
// debounce, subscription, and expansion lives in composable helpers, not an
// inheritance chain.
package block

import "fmt"

// Block is the capability every bar segment implements. Name is the stable
// type tag used for signal-addressed targeting; Update recomputes the text
// (possibly asynchronously) and raises a change notification if it differs;
// Query returns the last computed text with no side effects. A block whose
// Query returns "" contributes nothing to the composed line.
type Block interface {
	Name() string
	Update()
	Query() string
}

// Actioner is implemented by blocks with a block-specific command, such as
// toggling an expander. Addressed dispatch invokes it for action-kind
// refreshes.
type Actioner interface {
	Action()
}

// Attacher is implemented by blocks that expose their change notification
// for wiring; every block embedding Base does. Composites attach to their
// children, the bar attaches to its top-level blocks.
type Attacher interface {
	Attach(notify func())
}

// Base holds the state common to all blocks: the tag, the last rendered
// text, and the change observer. Concrete blocks embed it and call Set from
// their recomputation path. Base is loop-confined like everything else in
// the engine; it needs no locking.
type Base struct {
	name   string
	text   string
	notify func()
}

// NewBase returns a Base with the given type tag and empty text.
func NewBase(name string) Base {
	return Base{name: name}
}

// Name returns the block's stable type tag.
func (b *Base) Name() string { return b.name }

// Query returns the last rendered text. Pure: no recomputation, no side
// effects.
func (b *Base) Query() string { return b.text }

// Attach sets the change observer. The bar attaches itself to every block
// at construction; composites attach to their children.
func (b *Base) Attach(notify func()) { b.notify = notify }

// Set stores freshly computed text and fires the change notification if it
// differs from the previous value. Setting identical text is a no-op.
func (b *Base) Set(text string) {
	if text == b.text {
		return
	}
	b.text = text
	if b.notify != nil {
		b.notify()
	}
}

// Registry holds the fixed, ordered block list. Order is render order,
// decided at construction; the map view serves tag-addressed dispatch.
type Registry struct {
	order  []Block
	byName map[string]Block
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Block)}
}

// Add appends a block in render order. Duplicate tags are a wiring bug and
// are rejected.
func (r *Registry) Add(b Block) error {
	name := b.Name()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("block %q already registered", name)
	}
	r.order = append(r.order, b)
	r.byName[name] = b
	return nil
}

// Get returns the block with the given tag.
func (r *Registry) Get(name string) (Block, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// Blocks returns the blocks in render order. The returned slice is the
// registry's own; callers must not mutate it.
func (r *Registry) Blocks() []Block { return r.order }
