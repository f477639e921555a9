// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of user-facing
// problems modkit knows how to explain.
//
// An ActionableError says what failed and suggests fixes. When it links a
// catalog Id, the CLI can render the entry's Markdown guidance with glamour.
package issue
