// Package input turns the CLI's input source into paste content.
package input

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tombowditch/ptpb/client"
)

// Resolve returns the content to upload. A non-empty path is opened and
// handed over as a stream without being read; the caller must Close the
// result. Otherwise stdin is read to EOF and returned as one buffer.
func Resolve(path string, stdin io.Reader) (client.Content, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return client.Content{}, fmt.Errorf("opening input: %w", err)
		}
		return client.Stream(f, filepath.Base(path)), nil
	}

	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return client.Content{}, fmt.Errorf("reading stdin: %w", err)
	}
	return client.Bytes(data), nil
}
