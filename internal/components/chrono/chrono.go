package chrono

import (
	"time"
	_ "time/tzdata"
)

// the college publishes its schedule in local novosibirsk time
var novosibirsk *time.Location

func init() {
	var err error
	novosibirsk, err = time.LoadLocation("Asia/Novosibirsk")
	if err != nil {
		panic(err)
	}
}

// Novosibirsk returns a [*time.Location] for Asia/Novosibirsk
func Novosibirsk() *time.Location {
	return novosibirsk
}

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time, the timezone of the time will be Asia/Novosibirsk.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().In(novosibirsk)
}

// FixedTime is a TimeAPI that always returns the same instant.
type FixedTime struct {
	At time.Time
}

func (f FixedTime) Now() time.Time {
	return f.At
}
