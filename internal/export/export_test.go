package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

func sampleArticles() []model.Article {
	return []model.Article{
		{
			Title:    "반도체 수출 급증",
			URL:      "https://news.example.com/1",
			Summary:  "반도체 수출이 전년 대비 30% 증가했다.",
			Keywords: []string{"반도체", "수출"},
			Category: "경제",
		},
		{
			Title:    "Quote, \"comma\" title",
			URL:      "https://news.example.com/2",
			Keywords: nil,
		},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleArticles()))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(out[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Category", "Title", "Keywords", "Summary", "URL"}, records[0])
	assert.Equal(t, []string{"경제", "반도체 수출 급증", "반도체, 수출", "반도체 수출이 전년 대비 30% 증가했다.", "https://news.example.com/1"}, records[1])
	assert.Equal(t, []string{"N/A", "Quote, \"comma\" title", "", "N/A", "https://news.example.com/2"}, records[2])
}

func TestCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, nil))
	assert.Equal(t, "\xEF\xBB\xBFCategory,Title,Keywords,Summary,URL\n", buf.String())
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleArticles()[:1]))

	want := "## 반도체 수출 급증\n" +
		"- Category: Economy\n" +
		"- Keywords: 반도체, 수출\n" +
		"- URL: https://news.example.com/1\n\n" +
		"반도체 수출이 전년 대비 30% 증가했다.\n" +
		"--------------------\n\n"
	assert.Equal(t, want, buf.String())
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, sampleArticles()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, SheetName, sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Title", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "반도체, 수출", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "https://news.example.com/2", sheet.Rows[2].Cells[4].String())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{"txt", FormatText},
		{"text", FormatText},
		{" xlsx ", FormatXLSX},
		{"excel", FormatXLSX},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	assert.EqualError(t, err, `export: unknown format "pdf"`)
}

func TestWrite_Dispatch(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, f, sampleArticles()))
			assert.NotZero(t, buf.Len())
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("pdf"), sampleArticles())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
	assert.Zero(t, buf.Len())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Equal(t, "text/plain; charset=utf-8", FormatText.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}
