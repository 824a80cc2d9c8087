package unixutil

import (
	"time"

	"golang.org/x/sys/unix"
)

// DurationFromTimeval converts tv to a duration. Timeval.Usec must be
// non-negative.
func DurationFromTimeval(tv unix.Timeval) time.Duration {
	return time.Duration(tv.Sec)*time.Second + time.Duration(tv.Usec)*time.Microsecond
}

// CPUTime returns the user and system CPU time consumed by the calling
// process so far.
func CPUTime() (user, sys time.Duration, err error) {
	var ru unix.Rusage
	err = unix.Getrusage(unix.RUSAGE_SELF, &ru)
	if err != nil {
		return 0, 0, err
	}
	return DurationFromTimeval(ru.Utime), DurationFromTimeval(ru.Stime), nil
}
