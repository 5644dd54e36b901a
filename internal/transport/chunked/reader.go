package chunked

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

var (
	ErrMalformed      = errors.New("malformed chunked encoding")
	ErrChunkTooLarge  = errors.New("http chunk length too large")
	ErrInvalidLenByte = errors.New("invalid byte in chunk length")
)

// maxLineLength bounds chunk header and trailer lines
const maxLineLength = 4096

func NewChunkedReader(r io.Reader) io.Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &chunkedReader{r: br}
}

type chunkedReader struct {
	r *bufio.Reader

	remaining int64 // bytes left in the current chunk
	inChunk   bool
	err       error
}

func (c *chunkedReader) readLine() ([]byte, error) {
	line, err := c.r.ReadSlice('\n')
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		} else if err == bufio.ErrBufferFull {
			err = ErrChunkTooLarge
		}
		return nil, err
	}
	if len(line) >= maxLineLength {
		return nil, ErrChunkTooLarge
	}
	return bytes.TrimRight(line, " \t\r\n"), nil
}

// readChunkHeader parses "1a;ext=val\r\n", extensions are ignored
func (c *chunkedReader) readChunkHeader() (n int64, err error) {
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	if i := bytes.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return 0, ErrMalformed
	}
	if len(line) > 15 {
		return 0, ErrChunkTooLarge
	}
	for _, b := range line {
		switch {
		case '0' <= b && b <= '9':
			b = b - '0'
		case 'a' <= b && b <= 'f':
			b = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			b = b - 'A' + 10
		default:
			return 0, ErrInvalidLenByte
		}
		n <<= 4
		n |= int64(b)
	}
	return n, nil
}

// skipTrailer consumes trailer fields up to the terminating empty line
func (c *chunkedReader) skipTrailer() error {
	for {
		line, err := c.readLine()
		if err != nil {
			return err
		}
		if len(line) == 0 {
			return nil
		}
	}
}

func (c *chunkedReader) Read(p []byte) (n int, err error) {
	if c.err != nil {
		return 0, c.err
	}
	if !c.inChunk {
		size, err := c.readChunkHeader()
		if err != nil {
			c.err = err
			return 0, err
		}
		if size == 0 {
			if err := c.skipTrailer(); err != nil {
				c.err = err
				return 0, err
			}
			c.err = io.EOF
			return 0, io.EOF
		}
		c.inChunk, c.remaining = true, size
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err = c.r.Read(p)
	c.remaining -= int64(n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		c.err = err
		return n, err
	}
	if c.remaining == 0 {
		dr, _ := c.r.ReadByte()
		dn, err := c.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			c.err = err
			return n, err
		}
		if dr != '\r' || dn != '\n' {
			c.err = ErrMalformed
			return n, c.err
		}
		c.inChunk = false
	}
	return n, nil
}
