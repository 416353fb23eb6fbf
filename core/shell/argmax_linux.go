package shell

import (
	"math"

	"golang.org/x/sys/unix"
)

// legacyArgMax is the fixed ARG_MAX Linux used before 2.6.23 and the floor
// the C library still applies.
const legacyArgMax = 131072

// MaxArgs reports the platform limit on exec arguments, computed like the C
// library's sysconf(_SC_ARG_MAX): a quarter of the stack limit, never below
// the legacy constant.
func MaxArgs() int {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_STACK, &rl); err != nil {
		return legacyArgMax
	}

	limit := rl.Cur / 4
	switch {
	case limit < legacyArgMax:
		return legacyArgMax
	case limit > math.MaxInt32:
		return math.MaxInt32
	}
	return int(limit)
}
