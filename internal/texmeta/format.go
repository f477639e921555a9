// SPDX-License-Identifier: MPL-2.0

package texmeta

import (
	"bufio"
	"regexp"
	"strings"
)

// dxgiPrefix is stripped from tags; texconv accepts format names without it.
const dxgiPrefix = "DXGI_FORMAT_"

var formatLine = regexp.MustCompile(`^\s*format\s*=\s*(\S+)`)

// ParseFormat scans texconv -info output for the first "format = <NAME>" line and
// returns NAME without any DXGI_FORMAT_ prefix. ok is false when no such line exists.
func ParseFormat(info string) (tag string, ok bool) {
	sc := bufio.NewScanner(strings.NewReader(info))
	for sc.Scan() {
		m := formatLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		tag = strings.TrimPrefix(m[1], dxgiPrefix)
		if tag == "" {
			continue
		}
		return tag, true
	}
	return "", false
}

// IsSRGB reports whether tag names an sRGB (gamma-encoded) format, which needs the
// converter's colorspace flag when rebuilding the texture.
func IsSRGB(tag string) bool {
	return strings.HasSuffix(strings.ToUpper(tag), "_SRGB")
}
