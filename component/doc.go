// Package component defines the lifecycle interface shared by fixtures and
// the test helpers that own them.
//
// # Interfaces
//
//   - Component: Start/Stop lifecycle with health reporting
//   - Resetter: optional return to a freshly started state
//   - Describable: optional self-description for logs
package component
