package tecs

// Pool recycles released instances of T through a free list.
//
// Releasing the same instance twice corrupts the free list. The pool does
// not check for it; callers own that contract.
type Pool[T any] struct {
	free   []T
	newFn  func() T
	reset  func(T)
	target int

	allocated int
}

// NewPool creates a pool. newFn allocates a blank instance and reset
// returns a released instance to its blank state. reset may be nil.
func NewPool[T any](newFn func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{
		newFn: newFn,
		reset: reset,
	}
}

// Checkout pops a blank instance from the free list or allocates one.
func (p *Pool[T]) Checkout() T {
	if n := len(p.free); n > 0 {
		x := p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		return x
	}
	p.allocated++
	return p.newFn()
}

// Release resets x and pushes it back onto the free list.
func (p *Pool[T]) Release(x T) {
	if p.reset != nil {
		p.reset(x)
	}
	p.free = append(p.free, x)
}

// SpinUp preallocates n instances and raises the target size to at least
// the resulting free list length.
func (p *Pool[T]) SpinUp(n int) {
	for i := 0; i < n; i++ {
		p.allocated++
		p.free = append(p.free, p.newFn())
	}
	if len(p.free) > p.target {
		p.target = len(p.free)
	}
}

// Cleanup trims the free list toward the target size. Nothing happens until
// the list exceeds twice the target; then max(min(20, excess), excess/4)
// items are dropped, where excess is the distance above target. It returns
// the number of items dropped.
func (p *Pool[T]) Cleanup() int {
	n := len(p.free)
	if n <= p.target*2 {
		return 0
	}
	excess := n - p.target
	drop := max(min(20, excess), excess/4)

	var zero T
	for i := n - drop; i < n; i++ {
		p.free[i] = zero
	}
	p.free = p.free[:n-drop]
	return drop
}

// Len returns the number of idle instances.
func (p *Pool[T]) Len() int {
	return len(p.free)
}

// Target returns the size Cleanup trims toward.
func (p *Pool[T]) Target() int {
	return p.target
}

// SetTarget sets the size Cleanup trims toward.
func (p *Pool[T]) SetTarget(n int) {
	if n < 0 {
		n = 0
	}
	p.target = n
}

// Allocated returns how many instances the pool has ever created.
func (p *Pool[T]) Allocated() int {
	return p.allocated
}
