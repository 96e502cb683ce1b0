package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// TextLoader handles plain text files. Encoding is limited to UTF-8
// (with optional BOM) and GBK; anything that survives neither decode is
// rejected.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("text file is empty")
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	return splitLines(text), nil
}

// decodeText strips a UTF-8 BOM, accepts valid UTF-8 as-is, and falls
// back to GBK for the legacy encoding the source material commonly
// ships in.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode text (tried UTF-8, GBK): %w", err)
	}
	return string(decoded), nil
}

// splitLines normalizes newlines and removes any stray BOM runes.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\uFEFF", "")
	return strings.Split(text, "\n")
}
