package model

import (
	"errors"
	"fmt"
)

var ErrUnknownMolType = errors.New("molecule type must be 'nucl' or 'prot'")

// MolType is the molecule type of both genomes.
type MolType string

const (
	Nucleotide MolType = "nucl"
	Protein    MolType = "prot"
)

func ParseMolType(s string) (MolType, error) {
	switch MolType(s) {
	case Nucleotide:
		return Nucleotide, nil
	case Protein:
		return Protein, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrUnknownMolType, s)
	}
}

// SearchProgram is the BLAST program used to compare two genomes of this type.
func (m MolType) SearchProgram() string {
	if m == Nucleotide {
		return "blastn"
	}
	return "blastp"
}

// Hit is one ranked match of a query. Descriptor is the subject title:
// the raw subject id, a space, then the free-text definition line.
type Hit struct {
	Descriptor string
}

// QueryResult is every hit reported for one query, best first.
type QueryResult struct {
	QueryDescriptor string
	Hits            []Hit
}

// OrthologPair is a confirmed reciprocal best hit.
type OrthologPair struct {
	Genome1ID string `json:"genome1_id"`
	Genome2ID string `json:"genome2_id"`
}

// OrthologSet keeps the order of the genome1 -> genome2 mapping.
type OrthologSet []OrthologPair
