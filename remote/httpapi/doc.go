// Package httpapi implements inboxcore.RemoteAPI over the extension
// backend's REST API.
//
// The adapter is a thin translation layer: it maps wire DTOs to the core's
// types and transport problems to the core's error taxonomy. It performs no
// caching, retrying, or state of its own.
package httpapi
