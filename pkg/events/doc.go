// Package events defines the structured Event record mirrored to live
// observers and the Formatter that builds it.
//
// # Event Shape
//
// Every event carries a source tag identifying the lifecycle step it
// describes, zero or more optional fields, and a timestamp assigned at
// formatting time:
//
//	{"source":"client_request","method":"POST","url":"/register/",
//	 "request_payload":{"username":"alice"},"timestamp":"2025-11-16T10:30:00.123Z"}
//
// Optional fields that were not set are omitted from the serialized form
// entirely; they never appear as null or empty placeholders. Serialized
// field order is stable: source first, present optional fields next,
// timestamp last.
//
// # Usage
//
//	f := events.NewFormatter()
//	ev := f.Format(events.SourceClientRequest,
//	    events.WithMethod(http.MethodPost),
//	    events.WithURL("/register/"),
//	    events.WithRequestPayload(map[string]string{"username": "alice"}),
//	)
//	data, _ := ev.Marshal()
//
// The formatter performs no validation of payload shapes; callers are
// responsible for stripping credentials before attaching a payload.
package events
