// Package logger is a standardized event logging framework for job control:
// every spawn, exit, stop and resume the shell performs can be recorded as a
// line of JSON and summarized later.
package logger
