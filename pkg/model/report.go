package model

import (
	"bufio"
	"fmt"
	"io"
)

// WriteReport writes one "genome1_id\tgenome2_id" line per pair, no header.
func WriteReport(w io.Writer, orthologs OrthologSet) error {
	bw := bufio.NewWriter(w)
	for _, p := range orthologs {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", p.Genome1ID, p.Genome2ID); err != nil {
			return fmt.Errorf("failed to write report line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
