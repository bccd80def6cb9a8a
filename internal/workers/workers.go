package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the worker count for a given task type. It uses
// GOMAXPROCS rather than runtime.NumCPU so container CPU limits are
// respected (Go 1.19+ sets GOMAXPROCS from cgroup limits).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks
//
// The limit parameter caps the worker count. Use 0 for no limit.
//
// Can be overridden with the SENDTG_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("SENDTG_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	count := int(float64(available) * multiplier)

	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}

	return count
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU).
// Media preparation is the typical consumer: it reads files from disk,
// shells out to ffmpeg and encodes thumbnails.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
