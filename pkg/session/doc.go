/*
Package session keeps the live dialogue sessions of a multi-client adapter.

Sessions are owned by the process that opened them and are never persisted.
Every transition is turned into a domain.SnapshotDiff and handed to a
ports.Publisher so streaming clients (SSE, other replicas) can follow along.
*/
package session
