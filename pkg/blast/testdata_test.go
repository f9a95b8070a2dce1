package blast

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const sampleXML = `<?xml version="1.0"?>
<!DOCTYPE BlastOutput PUBLIC "-//NCBI//NCBI BlastOutput/EN" "http://www.ncbi.nlm.nih.gov/dtd/NCBI_BlastOutput.dtd">
<BlastOutput>
  <BlastOutput_program>blastp</BlastOutput_program>
  <BlastOutput_db>blastdb/b</BlastOutput_db>
  <BlastOutput_iterations>
    <Iteration>
      <Iteration_iter-num>1</Iteration_iter-num>
      <Iteration_query-ID>Query_1</Iteration_query-ID>
      <Iteration_query-def>A|geneA1|contig1 kinase</Iteration_query-def>
      <Iteration_hits>
        <Hit>
          <Hit_num>1</Hit_num>
          <Hit_id>gnl|BL_ORD_ID|0</Hit_id>
          <Hit_def>B|geneB1|contig9 kinase</Hit_def>
        </Hit>
        <Hit>
          <Hit_num>2</Hit_num>
          <Hit_id>gnl|BL_ORD_ID|4</Hit_id>
          <Hit_def>B|geneB4|contig2 kinase-like</Hit_def>
        </Hit>
      </Iteration_hits>
    </Iteration>
    <Iteration>
      <Iteration_iter-num>2</Iteration_iter-num>
      <Iteration_query-ID>Query_2</Iteration_query-ID>
      <Iteration_query-def>A|geneA2|contig1</Iteration_query-def>
      <Iteration_hits>
      </Iteration_hits>
      <Iteration_message>No hits found</Iteration_message>
    </Iteration>
  </BlastOutput_iterations>
</BlastOutput>
`

// writeFakeTool drops an executable shell script named name into dir.
func writeFakeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake BLAST+ tools are shell scripts")
	}
	path := filepath.Join(dir, name)
	content := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
	return path
}
