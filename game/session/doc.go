// Package session keeps the live Freecell games in memory.
//
// Manager implements service.SessionManager. Each Session wraps one
// engine.GameEngine plus its creation and last access times; the session's
// own mutex serializes requests against its game while the manager's lock
// only guards the map.
//
// Session Identifiers:
//
// Callers may choose an id (the cookie transport does, the REST API may).
// Otherwise a random UUID is generated. Lookups are case-insensitive.
//
// Cleanup:
//
// Sessions idle for longer than the configured TTL are removed by
// CleanupExpiredSessions, which the server calls on a ticker. With
// WithMaxSessions set, creating a session past the cap evicts the least
// recently accessed one.
//
//	manager := session.NewManager(session.WithMaxSessions(1000))
//	sess, err := manager.Put("", engine.NewGameEngine(0, false), false)
package session
