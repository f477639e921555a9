// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from an explicit --config file, or else from
// ~/.config/modkit/config.cue (XDG on Linux, ~/Library/Application Support/modkit on
// macOS, %APPDATA%\modkit on Windows), or else from config.cue in the work dir.
// Every field is optional and MODKIT_* environment variables override file values
// (MODKIT_TOOLS_TEXTURE overrides tools.texture).
//
// Files are validated against the embedded CUE schema (config_schema.cue) before
// being merged over the defaults; checks CUE cannot express (encodings, argument
// templates) run on the decoded Config.
package config
