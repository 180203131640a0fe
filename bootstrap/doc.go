// Package bootstrap runs the lifecycle of a snapstudy process.
//
// An App owns the typed configuration, the logger and a component.Registry.
// Components start in registration order and stop in reverse; hooks run
// around those phases.
//
//	a, err := bootstrap.NewApp(&cfg)
//	a.RegisterComponent(serverComponent)
//	a.Run(ctx)
//
// Run blocks until SIGINT or SIGTERM. RunTask runs a finite task, such as
// a single pipeline run from the command line, and then shuts down.
package bootstrap
