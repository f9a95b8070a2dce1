package model

// ComputeReciprocalBestHits returns every (x, y) with aToB[x] == y and
// bToA[y] == x, ordered by the keys of aToB. Comparison is exact.
func ComputeReciprocalBestHits(aToB, bToA *BestHitMapping) OrthologSet {
	orthologs := make(OrthologSet, 0)

	aToB.Each(func(query, hit string) bool {
		back, ok := bToA.Lookup(hit)
		if ok && back == query {
			orthologs = append(orthologs, OrthologPair{Genome1ID: query, Genome2ID: hit})
		}
		return true
	})

	return orthologs
}
