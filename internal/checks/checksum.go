package checks

import (
	"crypto/md5" // #nosec G501 -- integrity check against accidental corruption only
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// blockSize is the read size used while hashing.
const blockSize = 8192

// FileAccessError is returned when a declared file cannot be read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot read '%s': %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// FileMD5 returns the lowercase hex md5sum of the file at path, reading it in
// fixed-size blocks so large files are never loaded whole.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	hasher := md5.New() // #nosec G401
	buf := make([]byte, blockSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &FileAccessError{Path: path, Err: err}
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
