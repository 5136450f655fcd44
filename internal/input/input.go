package input

import (
	"fmt"
	"io"
	"os"
)

// MaxSize caps how much log text a single parse will buffer.
const MaxSize = 64 << 20

// Read buffers the whole input. An empty path or "-" reads standard input
// until EOF; anything else is a file path.
func Read(path string) (string, error) {
	var src io.Reader
	if path == "" || path == "-" {
		src = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		src = f
	}

	data, err := io.ReadAll(io.LimitReader(src, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("input exceeds %d bytes", MaxSize)
	}
	return string(data), nil
}
