// SPDX-License-Identifier: MPL-2.0

package texmeta

import "testing"

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		info   string
		want   string
		wantOK bool
	}{
		{name: "bare line", info: "format = BC5_UNORM", want: "BC5_UNORM", wantOK: true},
		{name: "dxgi prefix stripped", info: "format = DXGI_FORMAT_BC1_UNORM", want: "BC1_UNORM", wantOK: true},
		{name: "trailing text ignored", info: "\tformat = BC7_UNORM_SRGB (sRGB)", want: "BC7_UNORM_SRGB", wantOK: true},
		{
			name: "full info dump",
			info: "reading tex.dds (DDS)\r\n" +
				"        width = 512\r\n" +
				"       height = 256\r\n" +
				"        depth = 1\r\n" +
				"    mipLevels = 10\r\n" +
				"    arraySize = 1\r\n" +
				"       format = R8G8B8A8_UNORM\r\n" +
				"    dimension = 2D\r\n",
			want:   "R8G8B8A8_UNORM",
			wantOK: true,
		},
		{name: "first match wins", info: "format = BC3_UNORM\nformat = BC1_UNORM", want: "BC3_UNORM", wantOK: true},
		{name: "no format line", info: "ERROR: Failed reading tex.dds\n", wantOK: false},
		{name: "other key ending in format", info: "pixelformat = BC1_UNORM", wantOK: false},
		{name: "empty output", info: "", wantOK: false},
		{name: "prefix only", info: "format = DXGI_FORMAT_", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseFormat(tt.info)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseFormat() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsSRGB(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"BC7_UNORM_SRGB":      true,
		"B8G8R8A8_UNORM_SRGB": true,
		"bc1_unorm_srgb":      true,
		"BC7_UNORM":           false,
		"BC5_SNORM":           false,
		"":                    false,
	}
	for tag, want := range tests {
		if got := IsSRGB(tag); got != want {
			t.Errorf("IsSRGB(%q) = %v, want %v", tag, got, want)
		}
	}
}
