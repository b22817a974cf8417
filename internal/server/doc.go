// Package server implements the HTTP server using Echo framework.
//
// Routes: observability (health/metrics/version), REST snapshot (/api/dashboard),
// and the viewer WebSocket endpoint (/ws).
package server
