// SPDX-License-Identifier: MPL-2.0

// Package texmeta records a texture's native pixel format next to the PNG it was
// converted to, so the edited PNG can later be converted back to the same format.
//
// Two storage strategies implement Store:
//   - EmbeddedStore writes a PNG tEXt chunk (key "DDSFormat" by default).
//   - SidecarStore writes a plain text file named after the image with its
//     extension replaced (e.g. "tex.png" -> "tex.format").
//
// A deployment picks exactly one. Read returns ErrMissing when no tag is present;
// callers must skip the image rather than guess a format.
package texmeta
