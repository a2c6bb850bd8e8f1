package logic

// Smoother is a fixed-capacity FIFO of recent ratios that reports their
// arithmetic mean. Not safe for concurrent use; the frame loop owns it.
type Smoother struct {
	buf   []float64
	head  int // next write position
	count int
	mean  float64
}

// NewSmoother creates a Smoother holding at most window samples.
// A window below 1 is treated as 1 (no smoothing).
func NewSmoother(window int) *Smoother {
	if window < 1 {
		window = 1
	}
	return &Smoother{buf: make([]float64, window)}
}

// Add inserts v, evicting the oldest sample when full, and returns the mean
// of the samples now held.
func (s *Smoother) Add(v float64) float64 {
	s.buf[s.head] = v
	s.head = (s.head + 1) % len(s.buf)
	if s.count < len(s.buf) {
		s.count++
	}

	// Oldest item is at (head - count) mod capacity
	start := (s.head - s.count + len(s.buf)) % len(s.buf)
	var sum float64
	for i := 0; i < s.count; i++ {
		sum += s.buf[(start+i)%len(s.buf)]
	}
	s.mean = sum / float64(s.count)
	return s.mean
}

// Mean returns the mean of the held samples, or false if none were added yet.
func (s *Smoother) Mean() (float64, bool) {
	if s.count == 0 {
		return 0, false
	}
	return s.mean, true
}

// Len returns the number of samples currently held.
func (s *Smoother) Len() int {
	return s.count
}

// Window returns the capacity.
func (s *Smoother) Window() int {
	return len(s.buf)
}
