// Package format renders values in the compact debug notation used by log lines.
package format

import (
	"strconv"
	"strings"
)

// Float renders f in its shortest exact form, keeping a ".0" suffix on integral values.
func Float(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.ContainsAny(s, ".NI") {
		return s
	}
	return s + ".0"
}

// Float32 is Float for single precision values.
func Float32(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if strings.ContainsAny(s, ".NI") {
		return s
	}
	return s + ".0"
}
