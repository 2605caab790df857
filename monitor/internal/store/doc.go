// Package store keeps the latest evaluation snapshot in memory for the API
// and WebSocket readers, along with a rolling record of API availability.
package store
