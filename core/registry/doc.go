// Package registry is the client for the external judicial registry API.
//
// The Client adds the API token and JSON accept headers to every call, bounds
// each call with a timeout and spaces consecutive listing pages by a minimum
// delay to stay under the registry's rate limit. It deliberately performs a
// single attempt per call: a 404 becomes ErrNotFound, other non-2xx answers
// become *RemoteAPIError and network failures become *TransportError.
// IsTransient classifies which of those the batch runner may retry.
//
// # Jurisdictions
//
// FilterFor maps a jurisdiction onto the registry's native listing filter using
// a closed table: the federal sentinel, the two-letter state codes, or an
// already-native "key=value" query. Anything else is ErrUnsupportedJurisdiction.
//
// # Usage
//
//	client, err := registry.New(cfg.Registry)
//	person, err := client.GetPerson(ctx, "1213")
//	if errors.Is(err, registry.ErrNotFound) {
//	    // skip
//	}
package registry
