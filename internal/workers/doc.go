/*
Package workers provides utilities for determining worker pool sizes in
containerized environments.

Go 1.19+ sets GOMAXPROCS from container CPU limits, but runtime.NumCPU()
still reports the host machine's CPU count. Sizing pools from NumCPU on a
large node with a small CPU limit leads to throttling and context-switch
overhead, so the helpers here derive counts from GOMAXPROCS instead:

	// CPU-bound work (image decoding), at most 8 workers
	n := workers.ForCPU(8)

	// I/O-bound work, at most 16 workers
	n := workers.ForIO(16)

All functions respect the DECODE_WORKERS environment variable, which lets
operators override the automatic calculation for a deployment.
*/
package workers
