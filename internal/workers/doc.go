/*
Package workers sizes the worker pools used for media preparation.

runtime.NumCPU() reports the host machine's CPU count even when the
process runs under a container CPU limit; GOMAXPROCS (automatically set
from cgroup limits since Go 1.19) is the honest number. The helpers here
derive worker counts from GOMAXPROCS with a workload multiplier:

	// Probing and thumbnail generation: reads files, shells out to
	// ffmpeg, encodes JPEG. Mixed CPU and I/O.
	n := workers.ForMixed(8)

All functions honor the SENDTG_WORKERS environment variable as a manual
override, capped by the per-call limit.
*/
package workers
