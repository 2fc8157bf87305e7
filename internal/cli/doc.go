// Package cli assembles the engine, its transports and its terminal front end
// from configuration. The cobra commands in cmd/genie are thin wrappers over it.
package cli
