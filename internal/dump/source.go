package dump

import (
	"bufio"
	"compress/gzip"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// ErrSourceUnavailable wraps any network, file or decompression failure
// while reading a dump. Lines read before the failure are still delivered.
var ErrSourceUnavailable = errors.New("source unavailable")

// Transfers are multi-gigabyte; the timeout only guards against an
// indefinite hang.
var httpClient = &http.Client{Timeout: 1000 * time.Second}

// LineSource produces a fresh LineReader over a gzip-compressed text
// resource. Each call re-opens the underlying resource.
type LineSource interface {
	Lines() (*LineReader, error)
}

// LineReader yields decompressed lines in file order. It is single-pass:
// once exhausted it cannot be rewound, only re-created from its source.
type LineReader struct {
	r       *bufio.Reader
	bar     *progressbar.ProgressBar
	closers []io.Closer
	err     error
	done    bool
}

// Next returns the next line (without the trailing newline) and whether
// one was available. Invalid UTF-8 byte sequences are dropped. After
// Next returns false, Err reports whether the stream ended cleanly.
func (lr *LineReader) Next() (string, bool) {
	if lr.done {
		return "", false
	}
	line, err := lr.r.ReadString('\n')
	if err != nil {
		lr.done = true
		if err != io.EOF {
			lr.err = errors.Wrapf(ErrSourceUnavailable, "read line: %v", err)
			return "", false
		}
		if line == "" {
			return "", false
		}
		// Final line without a trailing newline.
	}
	return sanitize(strings.TrimSuffix(line, "\n")), true
}

// Err returns the failure that ended the stream, or nil on clean EOF.
func (lr *LineReader) Err() error {
	return lr.err
}

// Close releases the decompressor and the underlying file or connection.
// Safe to call on every exit path, including after a read error.
func (lr *LineReader) Close() error {
	var first error
	for _, c := range lr.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	if lr.bar != nil {
		_ = lr.bar.Finish()
	}
	lr.closers = nil
	return first
}

func sanitize(line string) string {
	if utf8.ValidString(line) {
		return line
	}
	return strings.ToValidUTF8(line, "")
}

func newLineReader(compressed io.Reader, total int64, progress bool, description string, closers ...io.Closer) (*LineReader, error) {
	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.DefaultBytes(total, description)
		// Progress tracks compressed bytes consumed, not decompressed output.
		compressed = io.TeeReader(compressed, bar)
	}

	gz, err := gzip.NewReader(compressed)
	if err != nil {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, errors.Wrapf(ErrSourceUnavailable, "gzip: %v", err)
	}

	return &LineReader{
		r:       bufio.NewReaderSize(gz, 1<<20),
		bar:     bar,
		closers: append([]io.Closer{gz}, closers...),
	}, nil
}

// LocalSource streams a gzip-compressed dump from the local filesystem.
type LocalSource struct {
	Path        string
	Progress    bool
	Description string
}

func (s *LocalSource) Lines() (*LineReader, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "open %s: %v", s.Path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(ErrSourceUnavailable, "stat %s: %v", s.Path, err)
	}
	return newLineReader(bufio.NewReaderSize(f, 1<<20), info.Size(), s.Progress, s.Description, f)
}

// RemoteSource streams a gzip-compressed dump over HTTP. The response
// body is decompressed chunk by chunk and never buffered whole.
type RemoteSource struct {
	URL         string
	Progress    bool
	Description string
}

func (s *RemoteSource) Lines() (*LineReader, error) {
	resp, err := httpClient.Get(s.URL)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "get %s: %v", s.URL, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Wrapf(ErrSourceUnavailable, "get %s: status %s", s.URL, resp.Status)
	}
	return newLineReader(resp.Body, resp.ContentLength, s.Progress, s.Description, resp.Body)
}
