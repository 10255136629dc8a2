package storage

// readers.go wraps uploaded files before parsing.
//
// Spreadsheet programs on Windows prefix CSV exports with a UTF-8 byte order
// mark, and legacy exports sometimes contain stray Latin-1 bytes. Both are
// handled while streaming so the file is never held twice in memory.

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// textReader drops a leading UTF-8 BOM and replaces invalid UTF-8 with
// U+FFFD.
func textReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
}

// limitReader fails with ErrFileTooLarge once more than limit bytes have
// been read. A limit <= 0 disables the check.
type limitReader struct {
	r     io.Reader
	read  int64
	limit int64
}

func newLimitReader(r io.Reader, limit int64) *limitReader {
	return &limitReader{r: r, limit: limit}
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.limit > 0 && l.read > l.limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, l.limit)
	}
	return n, err
}

// BytesRead returns how many bytes have passed through.
func (l *limitReader) BytesRead() int64 {
	return l.read
}
