package blast

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kamanufred/reBLAST/pkg/model"
)

// One <Iteration> per query in BLAST XML (-outfmt 5).
type iteration struct {
	QueryDef string `xml:"Iteration_query-def"`
	Hits     []hit  `xml:"Iteration_hits>Hit"`
}

type hit struct {
	ID  string `xml:"Hit_id"`
	Def string `xml:"Hit_def"`
}

// DecodeResults reads BLAST XML and returns one QueryResult per iteration,
// hits in the order BLAST reported them. Iterations are decoded one at a
// time so large result files are never held as a single tree.
func DecodeResults(r io.Reader) ([]model.QueryResult, error) {
	decoder := xml.NewDecoder(r)
	results := make([]model.QueryResult, 0, 128)
	sawRoot := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not parse BLAST XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "BlastOutput":
			sawRoot = true
		case "Iteration":
			var it iteration
			if err := decoder.DecodeElement(&it, &start); err != nil {
				return nil, fmt.Errorf("could not parse BLAST iteration %d: %w", len(results)+1, err)
			}
			results = append(results, toQueryResult(it))
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("could not parse BLAST XML: no <BlastOutput> element")
	}
	return results, nil
}

func toQueryResult(it iteration) model.QueryResult {
	qr := model.QueryResult{
		QueryDescriptor: strings.TrimSpace(it.QueryDef),
		Hits:            make([]model.Hit, 0, len(it.Hits)),
	}
	for _, h := range it.Hits {
		// Same title the hit would have in a text report: id, then definition.
		title := strings.TrimSpace(h.ID + " " + h.Def)
		qr.Hits = append(qr.Hits, model.Hit{Descriptor: title})
	}
	return qr
}
