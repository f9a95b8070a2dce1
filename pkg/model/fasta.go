package model

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CheckFasta makes sure the input looks like a FASTA file before it is
// handed to makeblastdb: the first non-blank line must be a header, and at
// least one header must carry a pipe-delimited id.
func CheckFasta(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	seenHeader := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !seenHeader && !strings.HasPrefix(line, ">") {
			return errors.New("input is not FASTA: first record does not start with '>'")
		}
		if strings.HasPrefix(line, ">") {
			seenHeader = true
			if _, ok := pipeField1(strings.TrimPrefix(line, ">")); ok {
				// Good enough, the rest is makeblastdb's job.
				return nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read FASTA: %w", err)
	}

	if !seenHeader {
		return errors.New("input FASTA is empty")
	}
	return errors.New("no FASTA header has a pipe-delimited id (e.g. >genome|gene1|...)")
}
