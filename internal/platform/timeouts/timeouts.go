// Package timeouts holds the durations shared by servers and clients.
package timeouts

import "time"

// GRPCDial bounds the wait for a gRPC peer to report SERVING.
const GRPCDial = 3 * time.Second

// GRPCRequest bounds a single CLI call to the launch service.
const GRPCRequest = 10 * time.Second

// ReadHeader limits how long the explorer waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown bounds graceful shutdown of servers and telemetry.
const Shutdown = 5 * time.Second
