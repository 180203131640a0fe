// Package stream provides lazy, pull-based pipelines for event streams.
//
// A Pipeline is built from a source (FromSlice, FromChannel, From) and
// transformed with operators. Nothing runs until a terminal (Collect,
// Drain) pulls values through.
//
//	events := stream.FromChannel(paths)
//	videos := stream.Filter(events, isVideo)
//	ready := stream.Settle(videos, 2*time.Second, func(p string) string { return p })
//	reports := stream.Parallel(ready, 2, process)
//	err := stream.Drain(reports, write).Run(ctx)
//
// Settle is keyed: each key is emitted once, after its own quiet period.
// Parallel does not preserve order and cancels all workers on the first
// error returned by fn.
package stream
