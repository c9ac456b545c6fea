package builder

// New starts a builder from a copy of initial.
func New[T any](initial T) *Builder[T] {
	return &Builder[T]{
		obj: initial,
	}
}

// Builder accumulates changes on a value of type T.
// Snapshot hands out copies, so objects taken earlier
// never observe later Use calls.
type Builder[T any] struct {
	obj T
	Err error
}

func (b *Builder[T]) Use(setter func(b *T)) *Builder[T] {
	setter(&b.obj)
	return b
}

func (b *Builder[T]) MaybeUse(setter func(b *T) error) *Builder[T] {
	if b.Err == nil {
		b.Err = setter(&b.obj)
	}
	return b
}

// Snapshot returns a shallow copy of the current state.
func (b *Builder[T]) Snapshot() T {
	return b.obj
}

func (b *Builder[T]) Get() (T, error) {
	return b.obj, b.Err
}
