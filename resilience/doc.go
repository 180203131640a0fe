// Package resilience bounds concurrency with a bulkhead.
//
// The dag engine uses it to cap the fan-out of independent stages:
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
//	    Name:          "fanout",
//	    MaxConcurrent: 3,
//	    MaxWait:       resilience.WaitForever,
//	})
//	err := bh.Execute(ctx, func() error { return run(ctx) })
package resilience
