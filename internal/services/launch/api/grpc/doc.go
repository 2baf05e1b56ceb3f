// Package grpc serves the launch protocol and the private executor over
// gRPC with the JSON codec of package launchv1.
//
// Handlers parse the calling wallet from request metadata, call the
// protocol service, and convert domain errors to gRPC statuses carrying the
// rejection code as ErrorInfo.Reason.
package grpc
