// Package client provides a thin Go wrapper around the taskqueue
// server's HTTP and WebSocket API: submitting tasks, inspecting their
// status, and streaming status-changed events as they happen.
package client
