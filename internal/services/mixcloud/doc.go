// Package mixcloud is the enrichment client for the Mixcloud public API.
//
// Responses are cached verbatim on disk (<slug>-show.json, <slug>-embed.html)
// and reused while younger than the configured TTL. Uncached requests are
// spaced by a minimum interval measured at the client, and any network error
// or non-2xx status is reported as "no data".
package mixcloud
