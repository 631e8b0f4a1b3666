package utils

import (
	"fmt"
	"math"
	"runtime"
)

// MemUsage reports heap figures in MiB
func MemUsage() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return fmt.Sprintf("Alloc = %v MiB TotalAlloc = %v MiB Sys = %v MiB NumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC)
}

// CountNaN returns the number of NaN values in A
func CountNaN[T float32 | float64](A []T) (count int) {
	for _, f := range A {
		if math.IsNaN(float64(f)) {
			count++
		}
	}
	return
}
