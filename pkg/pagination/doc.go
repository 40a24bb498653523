// Package pagination splits a BLS year range into physical requests and
// stitches the per-request results back together.
//
// The BLS API caps the span of a single request: 10 years for unregistered
// callers and 20 years for registered ones. A range spanning 20 or more
// years is fetched as a first 19-year window followed by 20-year windows:
//
//	windows := pagination.Plan(pagination.Window{Start: 1960, End: 2020})
//	// [1960-1978] [1979-1998] [1999-2018] [2019-2020]
//
// The Fetcher issues the windows strictly one after another:
//
//	fetcher := pagination.NewFetcher(client, logger)
//	results, err := fetcher.FetchAll(ctx, ids, window, key)
//
// Results are merged by series id in the order the windows were issued.
// Nothing is re-sorted here. Any failing window aborts the whole fetch and
// no partial data is returned.
package pagination
