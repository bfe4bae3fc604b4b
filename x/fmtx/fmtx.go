package fmtx

import "io"

// DefaultOutput receives Print/Printf output. Host builds point it at
// stdout; the MCU bootstrap points it at a serial writer.
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
