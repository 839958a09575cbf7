// Package domain defines the core business entities of the push client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Connector: A routing unit binding local folders to remote upload parameters
//   - ClientConfig: The validated, read-only client configuration
//   - Route: The effective folders of one file after overrides are applied
//   - Outcome: The tagged result of an upload attempt
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
