package sources

import (
	"context"
	"fmt"
	"os"
)

type fileReader struct{}

// NewFileReader reads one input per non-empty line of a local file.
func NewFileReader() Reader { return fileReader{} }

func (fileReader) Type() string { return TypeFile }

func (fileReader) Read(ctx context.Context, src Source) ([]Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(src.Location)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", src.Location, err)
	}
	return buildInputs(splitLines(raw)), nil
}
