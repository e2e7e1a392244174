// Package core defines the shared language of the sqldialect system.
//
// This package contains:
//   - The closed Node Kind catalog with per-kind argument slots
//   - The tagged AST node (Node) and its traversal helpers
//   - Identifier quoting and normalization configuration
//
// The Golden Rule: pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
