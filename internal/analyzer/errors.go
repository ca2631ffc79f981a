package analyzer

import (
	"github.com/pkg/errors"
)

// Error kinds surfaced to the command line. Anything else is a generic error.
var (
	ErrArgumentCount = errors.New("expected exactly one CSV path argument")
	ErrFileNotFound  = errors.New("file not found")
	ErrNoData        = errors.New("no valid data found in CSV file")
)

// FileNotFoundError names the input path that could not be found.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return "Could not find file " + e.Path
}

// Is makes errors.Is(err, ErrFileNotFound) match.
func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}
