// Package websocket pushes live game updates to browsers.
//
// A central Hub owns the set of connected clients, grouped by session id.
// Clients connect with /ws?session=<id>; after every mutation the API calls
// BroadcastState and each watcher of that session receives one JSON frame:
//
//	{"session_id": "...", "event": "state_update", "game_state": {...}}
//
// Other events are "game_won" (data carries the high score entry) and
// "game_cancelled". Messages from clients are read only to keep the
// connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	hub.ServeWS(w, r, sessionID)
//
// Broadcasts are queued and never block the caller; when the queue is full
// the message is dropped and logged. A client whose send buffer is full is
// disconnected.
package websocket
