// Package ws implements the WebSocket hub that streams evaluation snapshots
// to the rendering layer.
//
// New(store, table, interval) creates a Hub. Hub.Run(ctx) checks the store
// every interval and broadcasts when a new cycle has been stored or the
// snapshot has turned stale; it blocks until ctx is cancelled, then closes
// all active connections. Hub.ServeHTTP upgrades the request, sends the
// current snapshot immediately, then streams updates.
//
// Message format sent to clients:
//
//	{
//	  "event": "snapshot",
//	  "data":  { /* same schema as GET /api/v1/snapshot */ }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stream.
package ws
