// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Fetcher: Reads markup from a source (file, stdin, URL)
//   - FetcherRegistry: Selects the fetcher for a source kind
//   - Serialiser: Writes a table in one output format
//   - SerialiserRegistry: Selects the serialiser for a format
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ExtractionStore: Extraction history. Without it, --save and the
//     history command report domain.ErrStoreUnavailable.
//   - Watcher: Change notifications for local files. Only the filesystem
//     connector provides it.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or serialiser package
package driven
