// Package api is a sequential client for the e-signature provider's REST API.
//
// This package handles:
//   - Bearer authentication on every request
//   - Retry with exponential backoff on 429/5xx statuses
//   - Paginated listing of completed signatures for a year
//   - Per-signature detail fetches
//   - Signed-document downloads
//
// Retry exhaustion does not raise: the last failing response is returned
// with Exhausted set, so callers choose whether a non-200 result is fatal.
//
// # Usage
//
//	client := api.NewClient(api.Options{Token: token})
//
//	sigs, err := client.ListCompleted(ctx, 2024)
//	detail, err := client.Detail(ctx, sigs[0].ID)
//	data, err := client.DownloadSigned(ctx, sigs[0].ID, sigs[0].Documents[0].ID)
package api
