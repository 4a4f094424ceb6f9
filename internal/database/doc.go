// Package database provides SQLite-based storage of finished searches.
//
// This package implements the HistoryDB, which stores:
//   - One row per search with its endpoints, outcome and path
//   - The scored edges of each search's graph
//
// Stored searches are for reporting only. Nothing in the search engine
// reads them back, so every run starts from an empty graph.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets `wikid history` read while a search is being saved
package database
