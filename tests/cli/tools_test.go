// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/text/encoding/japanese"
)

// The fake tools below stand in for the game's decompiler, its pack tool and
// the texture converter. Their inputs are plain text so scripts stay readable:
//
//   - a .lub file holds the UTF-8 source the decompiler "recovers";
//   - a .xap pack lists one "resource format" pair per line;
//   - a .rtex or .dds file holds the texture format name.

func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

// fakeDecompiler prints the source of a .lub file in Shift-JIS, like the
// original decompiler does for the game's scripts.
func fakeDecompiler() {
	if len(os.Args) != 2 {
		fail(64, "usage: luadec FILE")
	}
	src, err := os.ReadFile(os.Args[1])
	if err != nil {
		fail(1, "%v", err)
	}
	if strings.HasPrefix(string(src), "BROKEN") {
		fail(1, "bad header in %s", filepath.Base(os.Args[1]))
	}
	out, err := japanese.ShiftJIS.NewEncoder().Bytes(src)
	if err != nil {
		fail(1, "%v", err)
	}
	os.Stdout.Write(out)
}

// fakeContainerTool implements unpack, rtex-to-dds and pack-patch.
func fakeContainerTool() {
	args := os.Args[1:]
	if len(args) == 0 {
		fail(64, "usage: UnsealedVerses COMMAND ...")
	}
	switch args[0] {
	case "unpack":
		if len(args) != 3 {
			fail(64, "usage: unpack PACK OUTDIR")
		}
		f, err := os.Open(args[1])
		if err != nil {
			fail(1, "%v", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			name, format, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
			if name == "" {
				continue
			}
			mustWrite(filepath.Join(args[2], name), []byte(format))
		}
	case "rtex-to-dds":
		if len(args) != 3 {
			fail(64, "usage: rtex-to-dds OUT IN")
		}
		format, err := os.ReadFile(args[2])
		if err != nil {
			fail(1, "%v", err)
		}
		if len(format) == 0 {
			fail(1, "%s is not a texture", filepath.Base(args[2]))
		}
		mustWrite(args[1], format)
	case "pack-patch":
		if len(args) != 4 {
			fail(64, "usage: pack-patch OUT PACK DDSDIR")
		}
		entries, err := os.ReadDir(args[3])
		if err != nil {
			fail(1, "%v", err)
		}
		var lines []string
		for _, e := range entries {
			data, _ := os.ReadFile(filepath.Join(args[3], e.Name()))
			lines = append(lines, e.Name()+" "+string(data))
		}
		mustWrite(args[1], []byte(strings.Join(lines, "\n")+"\n"))
	default:
		fail(64, "unknown command %q", args[0])
	}
}

// fakeTextureTool implements -info, -ft png and -f FORMAT.
func fakeTextureTool() {
	args := os.Args[1:]
	if len(args) < 2 {
		fail(64, "usage: texconv OPTIONS FILE")
	}
	input := args[len(args)-1]
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	outDir := "."
	if i := slices.Index(args, "-o"); i >= 0 && i+1 < len(args) {
		outDir = args[i+1]
	}

	switch args[0] {
	case "-info":
		format, err := os.ReadFile(input)
		if err != nil {
			fail(1, "%v", err)
		}
		fmt.Printf("reading %s (DDS)\n  width = 4\n  height = 4\n", filepath.Base(input))
		if f := strings.TrimSpace(string(format)); f != "" {
			fmt.Printf("  format = DXGI_FORMAT_%s\n", f)
		}
	case "-ft":
		img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		for i := range 16 {
			img.Set(i%4, i/4, color.NRGBA{R: uint8(i * 16), G: 0x40, B: 0x80, A: 0xFF})
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			fail(1, "%v", err)
		}
		if err := imgio.Save(filepath.Join(outDir, stem+".png"), img, imgio.PNGEncoder()); err != nil {
			fail(1, "%v", err)
		}
	case "-f":
		if _, err := imgio.Open(input); err != nil {
			fail(1, "FAILED reading %s: %v", filepath.Base(input), err)
		}
		format := args[1]
		if slices.Contains(args, "-srgb") {
			format += " srgb"
		}
		mustWrite(filepath.Join(outDir, stem+".dds"), []byte(format))
	default:
		fail(64, "unknown option %q", args[0])
	}
}

func mustWrite(path string, data []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fail(1, "%v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fail(1, "%v", err)
	}
}
