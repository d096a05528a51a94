package estimator

// window is a bounded FIFO of consumption samples. Storage grows with the
// samples pushed, up to size; once full, each push overwrites the oldest one.
type window struct {
	buf   []float64
	size  int
	start int
}

func newWindow(size int) *window {
	if size < 0 {
		size = 0
	}
	return &window{size: size}
}

func (w *window) push(v float64) {
	if w.size == 0 {
		return
	}
	if len(w.buf) < w.size {
		w.buf = append(w.buf, v)
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

func (w *window) len() int { return len(w.buf) }

// values returns a copy of the samples, oldest first.
func (w *window) values() []float64 {
	out := make([]float64, 0, len(w.buf))
	out = append(out, w.buf[w.start:]...)
	return append(out, w.buf[:w.start]...)
}

func (w *window) reset() {
	w.buf = w.buf[:0]
	w.start = 0
}
