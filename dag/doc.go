// Package dag runs pipeline stages in dependency order.
//
// A Graph declares nodes in a fixed order and the edges between them. A data
// edge makes the target consume the source's outcome; an ordering edge only
// delays the target. BuildLevels groups nodes into levels, and the Engine
// runs each level as a bounded fan-out, recording outcomes in declaration
// order so results never depend on goroutine scheduling.
package dag
