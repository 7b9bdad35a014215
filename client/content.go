package client

import (
	"bytes"
	"io"
)

// ContentKind tells the two forms of Content apart.
type ContentKind int

const (
	// KindBytes is a bounded in-memory buffer.
	KindBytes ContentKind = iota
	// KindStream is a reader of unknown length.
	KindStream
)

// Content is the payload of a create or update. It is either a byte buffer
// or a stream; use Bytes or Stream to build one.
type Content struct {
	kind ContentKind
	data []byte
	r    io.Reader
	name string
}

// Bytes wraps an in-memory buffer.
func Bytes(b []byte) Content {
	return Content{kind: KindBytes, data: b}
}

// Stream wraps a reader whose length is not known up front. name is the
// advisory file name used when PasteOptions.FileName is empty; it may be "".
func Stream(r io.Reader, name string) Content {
	return Content{kind: KindStream, r: r, name: name}
}

// Kind reports whether c holds a buffer or a stream.
func (c Content) Kind() ContentKind {
	return c.kind
}

// Name returns the stream's advisory name, if any.
func (c Content) Name() string {
	return c.name
}

// Len returns the buffer length, or -1 for streams.
func (c Content) Len() int64 {
	if c.kind == KindStream {
		return -1
	}
	return int64(len(c.data))
}

// Reader returns a reader over the content. For streams this is the
// underlying reader itself, so it can only be consumed once.
func (c Content) Reader() io.Reader {
	if c.kind == KindStream {
		if c.r == nil {
			return bytes.NewReader(nil)
		}
		return c.r
	}
	return bytes.NewReader(c.data)
}

// Close closes the underlying stream if it is an io.Closer.
func (c Content) Close() error {
	if c.kind != KindStream {
		return nil
	}
	if cl, ok := c.r.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
