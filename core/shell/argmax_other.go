//go:build !linux

package shell

// MaxArgs reports the platform limit on exec arguments. Outside Linux the
// limit is fixed at the value the BSD kernels ship with.
func MaxArgs() int {
	return 262144
}
