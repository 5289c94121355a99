package uniqueid

import "time"

// Clock supplies the current time in milliseconds since the Unix epoch.
type Clock interface {
	NowMillis() int64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() int64

// NowMillis implements Clock.
func (f ClockFunc) NowMillis() int64 { return f() }

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowMillis implements Clock.
func (SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }
