// Package util provides small string helpers shared by the configuration
// layer, the HTTP surface and the text capabilities.
package util
