// Package buffer implements a sliding rune buffer over an input stream. A
// position can be marked, read past and rewound to, which lets the line
// selection engine try several line shapes against the same input.
package buffer

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// DefaultSize is the initial buffer capacity in runes.
const DefaultSize = 8 * 1024

// Strategy is the way physical lines are delimited.
type Strategy int

const (
	// Flat input has no separators; a line is as long as its shape says.
	Flat Strategy = iota
	// Newline input ends lines with "\n" or "\r\n".
	Newline
	// Custom input ends lines with an arbitrary separator string.
	Custom
)

func (s Strategy) String() string {
	switch s {
	case Flat:
		return "flat"
	case Newline:
		return "newline"
	default:
		return "custom"
	}
}

// StrategyFor picks the loading strategy for a line separator.
func StrategyFor(separator string) Strategy {
	switch separator {
	case "":
		return Flat
	case "\n", "\r\n":
		return Newline
	}
	return Custom
}

// IOError wraps a failure of the underlying reader. End of input is never an
// IOError.
type IOError struct{ Err error }

func (e *IOError) Error() string { return "read: " + e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// Reader is a mark/reset rune buffer. It is not safe for concurrent use.
type Reader struct {
	src      *bufio.Reader
	strategy Strategy
	sep      []rune

	buf  []rune
	pos  int // next rune to read
	end  int // end of loaded data
	mark int // -1 when unset
	eof  bool
	err  error
}

// New returns a Reader over r. size is the initial capacity in runes; the
// buffer grows when a marked region does not fit.
func New(r io.Reader, separator string, size int) *Reader {
	if size <= 0 {
		size = DefaultSize
	}
	return &Reader{
		src:      bufio.NewReader(r),
		strategy: StrategyFor(separator),
		sep:      []rune(separator),
		buf:      make([]rune, size),
		mark:     -1,
	}
}

// Strategy reports the loading strategy in use.
func (b *Reader) Strategy() Strategy { return b.strategy }

// Buffered reports the number of unread runes already in memory.
func (b *Reader) Buffered() int { return b.end - b.pos }

// Load makes sure at least min runes are buffered past the read position, as
// far as the input allows. It returns the number of buffered runes, which is
// smaller than min near the end of input. io.EOF is returned only when
// nothing is buffered and the input is exhausted.
func (b *Reader) Load(min int) (int, error) {
	for b.end-b.pos < min && !b.eof {
		if err := b.fill(min); err != nil {
			return b.end - b.pos, err
		}
	}
	if b.err != nil {
		return b.end - b.pos, b.err
	}
	if b.end == b.pos && b.eof {
		return 0, io.EOF
	}
	return b.end - b.pos, nil
}

// fill reads at least one rune, then whatever the source has buffered, up to
// the free capacity.
func (b *Reader) fill(min int) error {
	if b.err != nil {
		return b.err
	}
	b.makeRoom(min)
	first := true
	for b.end < len(b.buf) && (first || b.src.Buffered() > 0) {
		r, _, err := b.src.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				b.eof = true
				return nil
			}
			b.err = &IOError{Err: err}
			return b.err
		}
		b.buf[b.end] = r
		b.end++
		first = false
	}
	return nil
}

// makeRoom shifts the live region (from the mark, or the read position) to
// the front and grows the buffer if min more runes would still not fit.
func (b *Reader) makeRoom(min int) {
	start := b.pos
	if b.mark >= 0 && b.mark < start {
		start = b.mark
	}
	if start > 0 {
		n := copy(b.buf, b.buf[start:b.end])
		b.end = n
		b.pos -= start
		if b.mark >= 0 {
			b.mark -= start
		}
	}
	if need := b.pos + min; need > len(b.buf) || b.end == len(b.buf) {
		size := 2 * len(b.buf)
		for size < need {
			size *= 2
		}
		grown := make([]rune, size)
		copy(grown, b.buf[:b.end])
		b.buf = grown
	}
}

// Mark remembers the read position. Runes from the mark on stay buffered
// until the next Mark or Release.
func (b *Reader) Mark() { b.mark = b.pos }

// Reset rewinds to the mark. It reports false when no mark is set.
func (b *Reader) Reset() bool {
	if b.mark < 0 {
		return false
	}
	b.pos = b.mark
	return true
}

// Release drops the mark.
func (b *Reader) Release() { b.mark = -1 }

// Trim removes fill runes from the ends of a fixed-width window.
type Trim struct {
	Fill        rune
	Left, Right bool
}

// Apply trims s.
func (t Trim) Apply(s string) string {
	if t.Fill == 0 {
		return s
	}
	if t.Left {
		s = strings.TrimLeft(s, string(t.Fill))
	}
	if t.Right {
		s = strings.TrimRight(s, string(t.Fill))
	}
	return s
}

// ReadFixed skips offset runes, then reads up to length runes and trims them.
// The read position moves past the window. A window cut short by the end of
// input returns what is there; io.EOF is returned only when nothing at all
// remained.
func (b *Reader) ReadFixed(trim Trim, offset, length int) (string, error) {
	n, err := b.Load(offset + length)
	if err != nil {
		return "", err
	}
	if offset >= n {
		b.pos += n
		return "", nil
	}
	stop := min(offset+length, n)
	s := string(b.buf[b.pos+offset : b.pos+stop])
	b.pos += stop
	return trim.Apply(s), nil
}

// NextLine consumes the next physical line and returns it without its
// separator. With the flat strategy a line is minLength runes long, or
// shorter at the end of input. io.EOF is returned when no runes remain.
func (b *Reader) NextLine(minLength int) (string, error) {
	if b.strategy == Flat {
		if _, err := b.Load(minLength); err != nil {
			return "", err
		}
		n := min(minLength, b.end-b.pos)
		s := string(b.buf[b.pos : b.pos+n])
		b.pos += n
		return s, nil
	}
	scanned := 0
	for {
		if i := b.indexSep(scanned); i >= 0 {
			line := b.buf[b.pos : b.pos+i]
			b.pos += i + b.sepLen(i)
			if b.strategy == Newline && len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			return string(line), nil
		}
		scanned = max(0, b.end-b.pos-len(b.sep)+1)
		have := b.end - b.pos
		if b.eof {
			if have == 0 {
				return "", io.EOF
			}
			s := string(b.buf[b.pos:b.end])
			b.pos = b.end
			return s, nil
		}
		if _, err := b.Load(have + 1); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
	}
}

// AtEOF reports whether the input is exhausted and fully read.
func (b *Reader) AtEOF() bool {
	if b.pos < b.end {
		return false
	}
	_, err := b.Load(1)
	return errors.Is(err, io.EOF)
}

// indexSep finds the separator at or after from, relative to the read
// position.
func (b *Reader) indexSep(from int) int {
	data := b.buf[b.pos:b.end]
	if b.strategy == Newline {
		for i := from; i < len(data); i++ {
			if data[i] == '\n' {
				return i
			}
		}
		return -1
	}
	for i := from; i+len(b.sep) <= len(data); i++ {
		if data[i] == b.sep[0] && equalRunes(data[i:i+len(b.sep)], b.sep) {
			return i
		}
	}
	return -1
}

func (b *Reader) sepLen(int) int {
	if b.strategy == Newline {
		return 1
	}
	return len(b.sep)
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
