// Package timeouts holds the durations shared by the commands and services.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 10 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ScenarioStep caps a single scenario step.
const ScenarioStep = 10 * time.Second

// BrokerFlush bounds the final flush of pending broker messages.
const BrokerFlush = 2 * time.Second
