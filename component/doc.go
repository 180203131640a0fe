// Package component defines lifecycle-managed parts of a snapstudy process
// and the registry that starts, stops and health checks them.
//
//   - Component: Start/Stop/Health lifecycle
//   - Check: a health-only component for things with no lifecycle, such as
//     the ffmpeg toolchain or a capability slot
//   - Describable and RouteProvider: self-reporting for the startup summary
package component
