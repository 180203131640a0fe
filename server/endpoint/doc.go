// Package endpoint holds the gin handlers of the snapstudy HTTP surface:
// the upload entry point, health, version, info and the development-only
// capability reset.
package endpoint
