// Package memory provides in-memory implementations of driven ports.
// They back tests and the MCP server, which keeps extractions for the
// lifetime of a session. Nothing survives the process.
package memory
