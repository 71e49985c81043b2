// Package service wires MCP transports to the Sho tool handlers.
//
// It is the transport adapter layer: the package knows how to run MCP over stdio
// or streamable HTTP and delegates game meaning to the domain handlers.
package service
