// Package pipeline runs a search and its follow-up work as a sequence of
// steps.
//
// A typical pipeline runs the search, stores the finished result in the
// history database, and writes a report. Each stage is implemented as a
// Step that receives the same *model.SearchResult and may fill it in.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. Saving and reporting are optional and easy to add or remove
// 2. It provides consistent error handling and logging across steps
// 3. A failed search still flows on to the report and history steps
//
// BatchProcessor runs one pipeline per start/destination pair with
// concurrency control using errgroup.
package pipeline
