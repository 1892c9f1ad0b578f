//go:build !amd64

package rtsupport

// Memchr returns the index of the first occurrence of b in s, or -1.
func Memchr(s []byte, b byte) int {
	return memchrScalar(s, b)
}

// CountChar counts the run of consecutive bytes equal to b starting at
// s[0], capped at max (max < 0 means uncapped).
func CountChar(s []byte, b byte, max int) int {
	return countCharScalar(s, b, max)
}
