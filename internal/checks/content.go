package checks

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"
	"os"
	"strings"
)

// CheckContent reports, for every string, whether it occurs as a substring of
// any line. Matching is plain and case-sensitive. Lines are pulled from the
// sequence only until every string has been found.
func CheckContent(strs []string, lines iter.Seq[string]) map[string]bool {
	found := make(map[string]bool, len(strs))
	notFound := make([]string, 0, len(strs))
	for _, s := range strs {
		if _, seen := found[s]; seen {
			continue
		}
		found[s] = false
		notFound = append(notFound, s)
	}
	if len(notFound) == 0 {
		return found
	}

	for line := range lines {
		remaining := notFound[:0]
		for _, s := range notFound {
			if strings.Contains(line, s) {
				found[s] = true
				continue
			}
			remaining = append(remaining, s)
		}
		notFound = remaining
		if len(notFound) == 0 {
			break
		}
	}
	return found
}

// Lines yields the lines of data without their terminators.
// "\n", "\r\n" and "\r" all end a line; there is no line length limit.
func Lines(data []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := data
		for len(rest) > 0 {
			i := bytes.IndexAny(rest, "\r\n")
			if i < 0 {
				yield(string(rest))
				return
			}
			line := rest[:i]
			if rest[i] == '\r' && i+1 < len(rest) && rest[i+1] == '\n' {
				rest = rest[i+2:]
			} else {
				rest = rest[i+1:]
			}
			if !yield(string(line)) {
				return
			}
		}
	}
}

// readerLines yields the lines of r lazily. A read error ends the sequence
// and is stored in errp.
func readerLines(r io.Reader, errp *error) iter.Seq[string] {
	return func(yield func(string) bool) {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if len(line) > 0 {
				line = strings.TrimSuffix(line, "\n")
				line = strings.TrimSuffix(line, "\r")
				if !yield(line) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					*errp = err
				}
				return
			}
		}
	}
}

// ScanFile runs CheckContent over the lines of the file at path, reading only
// as much of the file as needed.
func ScanFile(path string, strs []string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	var readErr error
	found := CheckContent(strs, readerLines(f, &readErr))
	if readErr != nil {
		return nil, &FileAccessError{Path: path, Err: readErr}
	}
	return found, nil
}
