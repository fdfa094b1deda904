package parsers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteNDJSON_KeepsValueTypes(t *testing.T) {
	header := []string{"YEAR", "Weight", "Height", "Make", "Empty"}
	record := Record{
		"YEAR":   int64(2020),
		"Weight": 70.5,
		"Height": 175.0,
		"Make":   `"MITSU,BISHI"`,
		"Empty":  "",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, record, header))
	assert.Equal(t, `{"YEAR":2020,"Weight":70.5,"Height":175.0,"Make":"\"MITSU,BISHI\"","Empty":""}`+"\n", buf.String())

	records, errs := ParseNDJSON(&buf)
	allRecords, allErrors := collect(records, errs)

	assert.Empty(t, allErrors)
	require.Len(t, allRecords, 1)
	assert.Equal(t, record, allRecords[0])
	assert.IsType(t, float64(0), allRecords[0]["Height"])
}

func TestParseNDJSON_EmptyLines(t *testing.T) {
	ndjsonData := `{"id":1,"title":"First"}

{"id":2,"title":"Second"}
`
	records, errs := ParseNDJSON(strings.NewReader(ndjsonData))
	allRecords, _ := collect(records, errs)

	assert.Len(t, allRecords, 2, "Should skip empty lines")
}

func TestParseNDJSON_InvalidJSON(t *testing.T) {
	ndjsonData := `{"id":1,"title":"Valid"}
{invalid json}
{"id":2,"title":"Valid Again"}`

	records, errs := ParseNDJSON(strings.NewReader(ndjsonData))
	allRecords, allErrors := collect(records, errs)

	assert.Len(t, allRecords, 2, "Should parse valid records")
	assert.Len(t, allErrors, 1, "Should report 1 error for invalid JSON")
}

func TestParseNDJSON_EmptyFile(t *testing.T) {
	records, errs := ParseNDJSON(strings.NewReader(""))
	allRecords, allErrors := collect(records, errs)

	assert.Len(t, allRecords, 0)
	assert.Len(t, allErrors, 0)
}
