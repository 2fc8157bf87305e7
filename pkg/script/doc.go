// Package script holds the validated, read-only dialogue definition.
//
// A Store is built once from a domain.Script (directly or through a
// ports.ScriptLoader) and never mutated afterwards, so it may be shared by every
// session of the process.
package script
