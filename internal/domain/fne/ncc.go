package fne

import "regexp"

var nccPattern = regexp.MustCompile(`^[A-Za-z0-9]{8,11}$`)

// ValidNcc reports whether ncc has the shape of a taxpayer account number.
func ValidNcc(ncc string) bool {
	return nccPattern.MatchString(ncc)
}
