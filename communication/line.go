package communication

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LineCommunicator exchanges newline-terminated messages over a reader/writer pair,
// typically stdin/stdout or the pipes of a child process.
type LineCommunicator struct {
	scanner *bufio.Scanner
	writer  *bufio.Writer
}

// NewLineCommunicator initializes and returns a new LineCommunicator.
func NewLineCommunicator(r io.Reader, w io.Writer) *LineCommunicator {
	return &LineCommunicator{
		scanner: bufio.NewScanner(r),
		writer:  bufio.NewWriter(w),
	}
}

// Receive returns the next line with surrounding whitespace (and any \r) removed.
func (lc *LineCommunicator) Receive() (string, error) {
	if !lc.scanner.Scan() {
		if err := lc.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read line: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(lc.scanner.Text()), nil
}

// Send writes one line and flushes it so the peer can react immediately.
func (lc *LineCommunicator) Send(line string) error {
	if _, err := lc.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write line: %w", err)
	}
	if err := lc.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush line: %w", err)
	}
	return nil
}
