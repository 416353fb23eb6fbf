// Package shell turns operator input lines into argument vectors.
//
// Splitting is deliberately simple: a line is cut on runs of whitespace and
// every remaining run of non-whitespace characters becomes one argument.
// There is no quoting, escaping, globbing or variable expansion.
package shell

import (
	"strings"
	"unicode"
)

// Command is an argument vector. Element 0 names the builtin or program, the
// rest are its arguments.
type Command []string

// Name returns the builtin or program name, or "" for an empty command.
func (c Command) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments following the name.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// Trim removes leading and trailing whitespace from line, the content in
// between is unchanged. For example, " ls -a " becomes "ls -a".
func Trim(line string) string {
	return strings.TrimFunc(line, unicode.IsSpace)
}

// Parse splits line into a Command. It returns nil if line holds no
// arguments. Lines with more than MaxArgs arguments are silently truncated.
func Parse(line string) Command {
	return ParseN(line, MaxArgs())
}

// ParseN is Parse with an explicit argument limit; max <= 0 means no limit.
func ParseN(line string, max int) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	if max > 0 && len(fields) > max {
		fields = fields[:max]
	}
	return Command(fields)
}
