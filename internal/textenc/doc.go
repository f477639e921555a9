// SPDX-License-Identifier: MPL-2.0

// Package textenc repairs text that was decoded under the wrong character encoding.
//
// The common case in decompiled game scripts is Shift-JIS (CP932) data that some tool
// decoded as CP437. Recover reverses exactly that corruption: it encodes the garbled
// string back to CP437 bytes and decodes those bytes as Shift-JIS. It is the inverse of
// one specific corruption, not a sanitizer, so running it over text that is already
// correct fails instead of producing a second layer of garbage.
package textenc
