// Package crawler turns a document identifier into a list of admitted,
// normalized candidate identifiers.
//
// # Architecture
//
// A Source combines three collaborators:
//
//   - Fetcher: retrieves raw content and the final (post-redirect) URL
//   - LinkExtractor: pulls outbound references out of HTML
//   - URLFilter: resolves, normalizes and admits or rejects each reference
//
// Design decision: We keep our own small fetch/extract/filter chain rather
// than a crawling framework because:
//  1. The search expands exactly one document per step, chosen by a
//     scorer, so a framework's queue and scheduler would sit idle
//  2. Fetch errors must surface to the caller instead of being logged
//  3. Filter rules must be inspectable as data (see Predicate)
//
// # Filtering
//
// Rules cover scheme, host and file extension. Additional checks are
// expressed as named Predicate values so the active set can be listed and
// tested, for example ArticlePredicate which keeps only Wikipedia articles
// outside special namespaces.
//
// # Usage
//
//	filter := crawler.NewURLFilter(crawler.WikipediaRules())
//	source := crawler.NewSource(crawler.NewHTTPFetcher(httpClient), crawler.NewHTMLExtractor(), filter)
//	candidates, err := source.Candidates(ctx, "https://en.wikipedia.org/wiki/Camping")
package crawler
