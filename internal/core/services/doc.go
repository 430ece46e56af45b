// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on port interfaces, the extraction engine and the
// selection heuristics; adapters are injected at startup.
package services
