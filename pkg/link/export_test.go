package link

import "io"

// StartReader feeds d from r instead of a serial port.
func (d *Serial) StartReader(r io.Reader) <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.start(r)
	return d.done
}
