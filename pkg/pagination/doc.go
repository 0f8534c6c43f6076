// Package pagination provides the generic fetch and pagination engine for Idalon resources.
//
// A resource type only has to declare where it lives and which filters it accepts. Everything
// else (single lookups, page listings and lazy iteration over all pages) is provided here through
// two capability contracts:
//
//   - Model: a record type that knows its collection endpoint and its default filters.
//   - Paginable: a filter type whose offset/limit pair can be read and moved as a page cursor.
//
// Example usage:
//
//	night, err := pagination.FindOne[models.Night](ctx, apiClient, "d4bad0ba-5b5a-412b-a75a-e92e24c4f908")
//
//	paginator := pagination.Paginate[models.Night](apiClient, models.LeaderboardNightFilters())
//	for page := range paginator.All(ctx) {
//		fmt.Println(page.Total, len(page.Items))
//	}
//	if err := paginator.Err(); err != nil {
//		// the sequence ended because a request failed, not because pages ran out
//	}
//
// The paginator never has more than one request outstanding. It detects exhaustion one step
// after the page that crosses the server-reported total, and it ends the sequence on an empty
// page or on the first failed request. Failed requests are logged and kept for Err, they are not
// yielded to the consumer.
package pagination
