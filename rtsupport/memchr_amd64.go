//go:build amd64

package rtsupport

import "golang.org/x/sys/cpu"

// hasAVX2 gates the accelerated dispatch path, mirroring the CPU-feature
// detection used throughout the retrieval pack's SIMD layer. Emitted code
// never checks this itself; it always calls Memchr/CountChar and lets this
// package pick the fastest available strategy.
var hasAVX2 = cpu.X86.HasAVX2

// Memchr returns the index of the first occurrence of b in s, or -1.
func Memchr(s []byte, b byte) int {
	if hasAVX2 && len(s) >= 32 {
		return memchrSWAR(s, b)
	}
	return memchrScalar(s, b)
}

// CountChar counts the run of consecutive bytes equal to b starting at
// s[0], capped at max (max < 0 means uncapped).
func CountChar(s []byte, b byte, max int) int {
	if hasAVX2 && len(s) >= 32 {
		return countCharSWAR(s, b, max)
	}
	return countCharScalar(s, b, max)
}
