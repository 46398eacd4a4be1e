package ratelimit

// Semaphore is a counting semaphore bounding concurrent in-flight
// provider submissions.
type Semaphore struct {
	slots chan struct{}
}

// NewSemaphore returns a Semaphore with the given number of permits.
func NewSemaphore(permits int) *Semaphore {
	return &Semaphore{slots: make(chan struct{}, permits)}
}

// Acquire blocks until a permit is available.
func (s *Semaphore) Acquire() { s.slots <- struct{}{} }

// Release returns a permit.
func (s *Semaphore) Release() { <-s.slots }
