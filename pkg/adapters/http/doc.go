/*
Package http exposes dialogue sessions over a REST API with Server-Sent Events.

Requests are validated against the embedded OpenAPI document (served at
/openapi.yaml) before they reach a handler. Every session owns a dashboard
shell that follows the navigation signals its dialogue emits.
*/
package http
