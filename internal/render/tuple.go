// Package render turns a comparison into the line printed on stdout.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"handsplit/domain/batting"
)

// FormatTuple renders a comparison as (NotSignificant, (statistic, p-value)),
// for example "(False, (-2.1, 0.031))"
func FormatTuple(c *batting.Comparison) string {
	return fmt.Sprintf("(%s, (%s, %s))",
		FormatBool(c.NotSignificant), FormatFloat(c.Result.Statistic), FormatFloat(c.Result.PValue))
}

// FormatBool renders True or False
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// FormatFloat renders the shortest representation that round-trips, always
// with a decimal point or exponent: 1.0, 0.25, 2.3e-05, 1e+16, nan, -inf
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if f != 0 {
		sci := strconv.FormatFloat(f, 'e', -1, 64)
		exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
		if err == nil && (exp < -4 || exp >= 16) {
			return sci
		}
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
