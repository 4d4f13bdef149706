// Package shutdown ties process termination signals to a context.
//
// The first SIGINT or SIGTERM cancels the returned context so in-flight
// requests stop and deferred cleanup (closing storage, writing the metrics
// file) still runs. A second signal forces the process to exit.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
package shutdown
