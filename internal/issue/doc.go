// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling for user-facing CLI
// output: errors that carry the failed operation, the resource involved, and
// remediation suggestions alongside the underlying cause.
package issue
