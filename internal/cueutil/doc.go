// SPDX-License-Identifier: MPL-2.0

// Package cueutil compiles user CUE files against an embedded schema definition and
// turns CUE's error lists into messages that name the offending field path.
package cueutil
