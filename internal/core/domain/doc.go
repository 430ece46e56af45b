// Package domain defines the core entities for htmltab.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Table: A rectangular grid of cells extracted from markup
//   - Cell: A header or data cell with normalised text
//   - Source: A location markup is acquired from (file, URL, stdin)
//   - Document: Decoded markup text produced by a connector
//   - Extraction: The tables found in one document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
