// Package launchv1 defines the wire contract of the launch services: the
// JSON codec, request and response messages, service names, and
// a typed client.
//
// Messages are plain Go structs encoded as JSON under the "json" content
// subtype, so clients and servers share this package instead of generated
// protobuf code.
package launchv1
