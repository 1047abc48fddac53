// Package highscore keeps the log of completed games.
//
// Entries are ranked by move count, then finishing date and time, and the
// log is truncated to a fixed length (20 by default). Two backends are
// provided: FileStore keeps a flat JSON file, SQLiteStore a SQLite table.
package highscore
