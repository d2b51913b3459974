package buffer

// Number is the set of element types a Ring can accumulate.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Ring is a fixed-capacity circular accumulator. Push overwrites the slot at
// the write index and advances it modulo capacity; existing values are never
// shifted. Slots that have not been written yet read as zero.
//
// A Ring is not safe for concurrent use.
type Ring[T Number] struct {
	data   []T
	index  int
	pushes int
}

// NewRing returns a zeroed Ring. Capacities below 1 are clamped to 1.
func NewRing[T Number](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.data)
}

// Len returns the number of written slots, saturating at Cap.
func (r *Ring[T]) Len() int {
	return min(r.pushes, len(r.data))
}

// Full reports whether every slot has been written since the last Reset.
func (r *Ring[T]) Full() bool {
	return r.pushes >= len(r.data)
}

// Push stores v in the current slot and advances the write index.
func (r *Ring[T]) Push(v T) {
	r.data[r.index] = v
	r.advance()
}

func (r *Ring[T]) advance() {
	r.index++
	if r.index == len(r.data) {
		r.index = 0
	}
	r.pushes++
}

// Sum returns the sum over all Cap slots, including unwritten (zero) ones.
// Slots are added in storage order.
func (r *Ring[T]) Sum() T {
	var sum T
	for _, v := range r.data {
		sum += v
	}
	return sum
}

// Reset zeroes every slot and the write index.
func (r *Ring[T]) Reset() {
	clear(r.data)
	r.index = 0
	r.pushes = 0
}
