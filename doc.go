/*
Package fieldflow injects strongly typed parameters into HTTP request handlers
and routes discriminated-union JSON payloads to typed variant slices, backed by
a Watermill-based messaging runtime.

# HTTP dispatch

Declare a parameter struct whose fields implement the Extractor capability,
then build a handler from a typed function:

	type listUsersParams struct {
		Log  fieldflow.RequestLog
		Body fieldflow.JSON[ListUsersRequest]
	}

	handler := fieldflow.MustHandler(func(ctx context.Context, p *listUsersParams) (any, error) {
		return listUsers(ctx, p.Body.Value)
	})

The struct is introspected exactly once per type; the resulting registry is
cached and shared by every request. Extraction failures respond with 400,
handler failures with 500, both overridable via StatusCarrier.

# Union decoding

Tag slice fields with variant keys and a string field as the discriminator:

	type menagerie struct {
		Kind    string       `discriminator:"type"`
		Crabs   []Crab       `variant:"crab,page_size=1000"`
		Gophers []GopherNest `variant:"gopher"`
	}

	kind, err := fieldflow.DecodeUnion(payload, &record)

Only the slice matching the envelope's discriminator is populated; unknown
discriminators produce a DataError without touching the record.

# Service runtime

NewService wires configuration, transports, and the default middleware chain.
RegisterEndpoint binds dispatch handlers onto the API router; RegisterUnionHandler
and RegisterRecordHandler attach typed broker consumers.
*/
package fieldflow
