// SPDX-License-Identifier: MPL-2.0

package texmeta

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	pngstructure "github.com/dsoprea/go-png-image-structure/v2"
	"github.com/klauspost/compress/zlib"
)

const (
	chunkIHDR = "IHDR"
	chunkIEND = "IEND"
	chunkTEXT = "tEXt"
	chunkZTXT = "zTXt"
	chunkITXT = "iTXt"

	maxKeywordLen = 79
)

var (
	// ErrNotPNG is returned when a file does not start with the PNG signature.
	ErrNotPNG = errors.New("not a PNG file")
	// ErrCorruptPNG is returned when the chunk stream is truncated or malformed.
	ErrCorruptPNG = errors.New("corrupt PNG chunk stream")
)

// EmbeddedStore keeps the tag in a PNG text chunk.
type EmbeddedStore struct {
	key string
}

// NewEmbeddedStore returns a store using key as the text chunk keyword.
func NewEmbeddedStore(key string) *EmbeddedStore {
	if key == "" {
		key = DefaultKey
	}
	return &EmbeddedStore{key: key}
}

// Mode implements Store.
func (s *EmbeddedStore) Mode() Mode { return ModeEmbedded }

// Key returns the chunk keyword.
func (s *EmbeddedStore) Key() string { return s.key }

// Write implements Store. Any text chunk already using the key is replaced; the new
// tEXt chunk is placed immediately before IEND. The file is rewritten atomically.
func (s *EmbeddedStore) Write(imagePath, tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}
	if len(s.key) == 0 || len(s.key) > maxKeywordLen {
		return fmt.Errorf("png keyword %q must be 1-%d bytes", s.key, maxKeywordLen)
	}

	info, err := os.Stat(imagePath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", imagePath, err)
	}
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", imagePath, err)
	}
	chunks, err := readChunks(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", imagePath, err)
	}

	text := make([]byte, 0, len(s.key)+1+len(tag))
	text = append(text, s.key...)
	text = append(text, 0)
	text = append(text, tag...)

	out := make([]*pngstructure.Chunk, 0, len(chunks)+1)
	for _, c := range chunks {
		if isTextChunk(c.Type) && chunkKeyword(c.Data) == s.key {
			continue
		}
		if c.Type == chunkIEND {
			out = append(out, newChunk(chunkTEXT, text))
		}
		out = append(out, c)
	}

	var buf bytes.Buffer
	if err := pngstructure.NewChunkSlice(out).WriteTo(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", imagePath, err)
	}
	return writeFileAtomic(imagePath, buf.Bytes(), info.Mode().Perm())
}

// Read implements Store. tEXt, zTXt and iTXt chunks are all accepted, since tools
// re-saving the image may rewrite the chunk type.
func (s *EmbeddedStore) Read(imagePath string) (string, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", imagePath, err)
	}
	chunks, err := readChunks(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", imagePath, err)
	}

	for _, c := range chunks {
		if !isTextChunk(c.Type) || chunkKeyword(c.Data) != s.key {
			continue
		}
		value, err := textValue(c)
		if err != nil {
			return "", fmt.Errorf("%s: %s chunk %q: %w", imagePath, c.Type, s.key, err)
		}
		return value, nil
	}

	return "", fmt.Errorf("%s: no %q text chunk: %w", imagePath, s.key, ErrMissing)
}

// readChunks splits b into its chunks and checks the framing the parser leaves
// to the caller: CRCs, a leading IHDR and a closing IEND.
func readChunks(b []byte) ([]*pngstructure.Chunk, error) {
	parser := pngstructure.NewPngMediaParser()
	if !parser.LooksLikeFormat(b) {
		return nil, ErrNotPNG
	}
	mc, err := parser.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPNG, err)
	}
	cs, ok := mc.(*pngstructure.ChunkSlice)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected parse result %T", ErrCorruptPNG, mc)
	}

	chunks := cs.Chunks()
	for _, c := range chunks {
		if int(c.Length) != len(c.Data) {
			return nil, fmt.Errorf("%w: %s chunk at offset %d is truncated", ErrCorruptPNG, c.Type, c.Offset)
		}
		if !c.CheckCrc32() {
			return nil, fmt.Errorf("%w: %s chunk at offset %d has bad CRC", ErrCorruptPNG, c.Type, c.Offset)
		}
	}
	if len(chunks) == 0 || chunks[0].Type != chunkIHDR {
		return nil, fmt.Errorf("%w: first chunk is not IHDR", ErrCorruptPNG)
	}
	if chunks[len(chunks)-1].Type != chunkIEND {
		return nil, fmt.Errorf("%w: missing IEND", ErrCorruptPNG)
	}
	return chunks, nil
}

func newChunk(typ string, data []byte) *pngstructure.Chunk {
	c := &pngstructure.Chunk{Length: uint32(len(data)), Type: typ, Data: data}
	c.UpdateCrc32()
	return c
}

func isTextChunk(typ string) bool {
	return typ == chunkTEXT || typ == chunkZTXT || typ == chunkITXT
}

func chunkKeyword(data []byte) string {
	if i := bytes.IndexByte(data, 0); i > 0 {
		return string(data[:i])
	}
	return ""
}

func textValue(c *pngstructure.Chunk) (string, error) {
	rest := c.Data[bytes.IndexByte(c.Data, 0)+1:]

	switch c.Type {
	case chunkTEXT:
		return string(rest), nil
	case chunkZTXT:
		if len(rest) < 1 || rest[0] != 0 {
			return "", fmt.Errorf("%w: unsupported compression method", ErrCorruptPNG)
		}
		return inflate(rest[1:])
	case chunkITXT:
		// compression flag, compression method, language tag\0, translated keyword\0, text
		if len(rest) < 2 {
			return "", fmt.Errorf("%w: short iTXt chunk", ErrCorruptPNG)
		}
		compressed := rest[0] == 1
		rest = rest[2:]
		for range 2 {
			i := bytes.IndexByte(rest, 0)
			if i < 0 {
				return "", fmt.Errorf("%w: malformed iTXt chunk", ErrCorruptPNG)
			}
			rest = rest[i+1:]
		}
		if compressed {
			return inflate(rest)
		}
		return string(rest), nil
	}
	return "", fmt.Errorf("%w: %s is not a text chunk", ErrCorruptPNG, c.Type)
}

func inflate(b []byte) (string, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("inflate: %w", err)
	}
	defer zr.Close() //nolint:errcheck // read-only

	out, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("inflate: %w", err)
	}
	return string(out), nil
}
