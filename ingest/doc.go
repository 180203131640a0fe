// Package ingest runs videos dropped into a watched directory through the
// pipeline.
//
// The Watcher subscribes to the input directory with fsnotify, waits for
// each video to stop changing, runs it with bounded concurrency and
// writes a YAML sidecar next to the other results:
//
//	watch:
//	  input_dir: "./inbox"
//	  output_dir: "./inbox/results"
//	  max_concurrent: 2
//	  settle_delay: 2s
//
// A sidecar newer than its source marks the source as processed, so a
// restart does not redo finished work.
package ingest
