package stft

// WindowSize returns W, the FFT/window size this driver was built for.
func (d *Driver) WindowSize() int {
	return d.w
}

// HopSize returns H, the number of samples advanced per hop.
func (d *Driver) HopSize() int {
	return d.h
}

// Bins returns K, the number of real-FFT bins including DC and Nyquist.
func (d *Driver) Bins() int {
	return d.k
}
