package client

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
)

// Form field names understood by pb.
const (
	FieldContent = "c"
	FieldPrivate = "p"
	FieldSunset  = "sunset"
)

const defaultPartType = "application/octet-stream"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// PasteOptions configures a create or update.
type PasteOptions struct {
	// FileName is attached to the content part. Defaults to the stream's
	// own name.
	FileName string
	// ContentType overrides the content part's MIME type.
	ContentType string
	// Private hides the paste from public listing.
	Private bool
	// Sunset is the number of seconds until expiry. Zero leaves it unset;
	// any other value is sent as given and the server decides.
	Sunset float64
	// Label requests a vanity id. Create only.
	Label string
}

// form is a ready-to-send multipart body.
type form struct {
	contentType string
	body        io.Reader
	// length is -1 when the body is streamed.
	length int64
}

// newForm builds the multipart body for content. Buffers are encoded up
// front; streams are encoded on the fly through a pipe so that large files
// never sit in memory.
func newForm(content Content, opts PasteOptions) *form {
	if content.Kind() == KindBytes {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		// Writes to a bytes.Buffer cannot fail.
		_ = writeForm(mw, content, opts)
		return &form{
			contentType: mw.FormDataContentType(),
			body:        &buf,
			length:      int64(buf.Len()),
		}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, content, opts))
	}()
	return &form{
		contentType: mw.FormDataContentType(),
		body:        pr,
		length:      -1,
	}
}

func writeForm(mw *multipart.Writer, content Content, opts PasteOptions) error {
	filename := opts.FileName
	if filename == "" {
		filename = content.Name()
	}

	part, err := mw.CreatePart(contentHeader(filename, opts.ContentType))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content.Reader()); err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	if opts.Private {
		if err := mw.WriteField(FieldPrivate, "1"); err != nil {
			return err
		}
	}
	if opts.Sunset != 0 {
		if err := mw.WriteField(FieldSunset, strconv.FormatFloat(opts.Sunset, 'f', -1, 64)); err != nil {
			return err
		}
	}
	return mw.Close()
}

func contentHeader(filename, contentType string) textproto.MIMEHeader {
	disposition := fmt.Sprintf(`form-data; name="%s"`, FieldContent)
	if filename != "" {
		disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(filename))
	}

	if contentType == "" && filename != "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = defaultPartType
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", disposition)
	h.Set("Content-Type", contentType)
	return h
}
