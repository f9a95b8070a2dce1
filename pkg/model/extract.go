package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kamanufred/reBLAST/logger"
	"go.uber.org/zap"
)

var ErrMalformedDescriptor = errors.New("malformed descriptor")

// makeblastdb assigns these ids when run without -parse_seqids.
const blastOrdinalPrefix = "gnl|BL_ORD_ID|"

// MalformedDescriptorError reports a query or hit descriptor that has no
// usable pipe-delimited id field.
type MalformedDescriptorError struct {
	Descriptor string
	Reason     string
}

func (e *MalformedDescriptorError) Error() string {
	return fmt.Sprintf("malformed descriptor %q: %s", e.Descriptor, e.Reason)
}

func (e *MalformedDescriptorError) Unwrap() error {
	return ErrMalformedDescriptor
}

// pipeField1 returns field index 1 of a pipe-delimited string.
func pipeField1(s string) (string, bool) {
	fields := strings.Split(s, "|")
	if len(fields) < 2 {
		return "", false
	}
	id := strings.TrimSpace(fields[1])
	return id, id != ""
}

// QueryID extracts the effective id of a query descriptor:
// "ABC|gene1|x" -> "gene1".
func QueryID(descriptor string) (string, error) {
	id, ok := pipeField1(descriptor)
	if !ok {
		return "", &MalformedDescriptorError{Descriptor: descriptor, Reason: "query has no pipe-delimited id at field 1"}
	}
	return id, nil
}

// SubjectID extracts the effective id of a hit descriptor. The first
// whitespace token is the raw subject id, the rest is the definition line.
// Field 1 of the definition wins; when the definition carries no pipe
// fields, field 1 of the raw id is used instead, unless the raw id is a
// BLAST ordinal id (gnl|BL_ORD_ID|n), which names no gene.
func SubjectID(descriptor string) (string, error) {
	tokens := strings.Fields(descriptor)
	if len(tokens) == 0 {
		return "", &MalformedDescriptorError{Descriptor: descriptor, Reason: "empty hit descriptor"}
	}

	definition := strings.Join(tokens[1:], " ")
	if id, ok := pipeField1(definition); ok {
		return id, nil
	}
	if strings.HasPrefix(tokens[0], blastOrdinalPrefix) {
		return "", &MalformedDescriptorError{Descriptor: descriptor, Reason: "definition has no pipe-delimited id and the hit id is a BLAST ordinal"}
	}
	if id, ok := pipeField1(tokens[0]); ok {
		return id, nil
	}
	return "", &MalformedDescriptorError{Descriptor: descriptor, Reason: "hit has no pipe-delimited id at field 1"}
}

// ExtractBestHits keeps the top hit of every query that has one. Input order
// is trusted; nothing is re-ranked. Queries without hits are left out.
func ExtractBestHits(results []QueryResult) (*BestHitMapping, error) {
	mapping := NewBestHitMapping()

	for i, r := range results {
		if len(r.Hits) == 0 {
			continue
		}

		query, err := QueryID(r.QueryDescriptor)
		if err != nil {
			return nil, fmt.Errorf("query record %d: %w", i, err)
		}
		hit, err := SubjectID(r.Hits[0].Descriptor)
		if err != nil {
			return nil, fmt.Errorf("top hit of query %q: %w", query, err)
		}

		if previous, ok := mapping.Lookup(query); ok {
			logger.Warn("Duplicate query in search results, later record wins",
				zap.String("query", query),
				zap.String("previous_hit", previous),
				zap.String("hit", hit))
		}
		mapping.Set(query, hit)
	}

	return mapping, nil
}
