package elgo

// Close interrupts any running classification and releases the saturation
// state. Other methods return ErrClosed afterwards.
func (r *Reasoner) Close() error {
	if r == nil || r.closed.Swap(true) {
		return nil
	}
	r.Interrupt()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Reset()
	r.tax = nil
	return nil
}
