package uniqueid

import (
	"errors"
	"fmt"
)

var (
	// ErrParameterOutOfBounds is matched by every *ParameterOutOfBoundsError.
	ErrParameterOutOfBounds = errors.New("uniqueid: parameter out of bounds")
	// ErrClockRegression is matched by every *ClockRegressionError.
	ErrClockRegression = errors.New("uniqueid: clock moved backwards")
	// ErrStallTimeout is returned when a generator configured WithMaxStall
	// waited that long for the next millisecond without seeing it.
	ErrStallTimeout = errors.New("uniqueid: timed out waiting for the clock to advance")
)

// ParameterOutOfBoundsError reports a generator-ID or cluster-ID outside
// [Min, Max).
type ParameterOutOfBoundsError struct {
	Name  string
	Min   int
	Max   int
	Value int
}

func (e *ParameterOutOfBoundsError) Error() string {
	return fmt.Sprintf("uniqueid: %s %d out of bounds [%d, %d)", e.Name, e.Value, e.Min, e.Max)
}

func (e *ParameterOutOfBoundsError) Unwrap() error { return ErrParameterOutOfBounds }

// ClockRegressionError reports a clock reading older than the last
// timestamp a generator has handed out.
type ClockRegressionError struct {
	Identity Identity
	Last     int64
	Now      int64
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("uniqueid: clock moved backwards for generator %s: now=%d last=%d (%dms)",
		e.Identity, e.Now, e.Last, e.Last-e.Now)
}

func (e *ClockRegressionError) Unwrap() error { return ErrClockRegression }

func assertWithinBounds(name string, max, value int) error {
	if value < 0 || value >= max {
		return &ParameterOutOfBoundsError{Name: name, Min: 0, Max: max, Value: value}
	}
	return nil
}
