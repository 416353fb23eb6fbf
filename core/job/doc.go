// Package job launches external programs as foreground jobs: each runs in
// its own process group, owns the controlling terminal while it runs, and
// hands it back to the shell when it exits or stops.
package job
