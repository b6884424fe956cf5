package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/ppopth/trellis/field"
)

// maxPrealloc bounds capacity reserved from header values before the data is read
const maxPrealloc = 1024

// tokenizer splits its input on any whitespace
type tokenizer struct {
	scanner *bufio.Scanner
}

func newTokenizer(r io.Reader) *tokenizer {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &tokenizer{scanner: s}
}

// next returns the next token, or io.EOF at the end of the input
func (t *tokenizer) next() (string, error) {
	if t.scanner.Scan() {
		return t.scanner.Text(), nil
	}
	if err := t.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (t *tokenizer) integer(name string) (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, eofAsMalformed(err))
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, tok, ErrMalformedInput)
	}
	return v, nil
}

func (t *tokenizer) positiveInt(name string) (int, error) {
	v, err := t.integer(name)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d: %w", name, v, ErrMalformedInput)
	}
	return v, nil
}

// bits reads n tokens that must each be 0 or 1
func (t *tokenizer) bits(n int) (field.Vector, error) {
	v := make(field.Vector, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		tok, err := t.next()
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, eofAsMalformed(err))
		}
		switch tok {
		case "0":
			v = append(v, 0)
		case "1":
			v = append(v, 1)
		default:
			return nil, fmt.Errorf("bit %q: %w", tok, ErrMalformedInput)
		}
	}
	return v, nil
}

// eofAsMalformed reports a truncated input as malformed
func eofAsMalformed(err error) error {
	if err == io.EOF {
		return fmt.Errorf("unexpected end of input: %w", ErrMalformedInput)
	}
	return err
}
