package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

func outputRun() *model.Run {
	return &model.Run{
		ID:     "run-1",
		Status: model.RunStatusComplete,
		Result: &model.Result{
			Articles: []model.Article{
				{Title: "금리 동결", Category: "경제", Keywords: []string{"금리"}},
				{Title: "신형 칩 공개", Category: "기술", Keywords: []string{"반도체", "금리"}},
				{Title: "총선 일정", Category: "정치", Keywords: []string{"선거"}},
			},
			Categories: []string{model.CategoryAll, "경제", "기술", "정치"},
		},
	}
}

func TestFilterArticles(t *testing.T) {
	articles := outputRun().Result.Articles

	assert.Len(t, filterArticles(articles, "", ""), 3)
	assert.Len(t, filterArticles(articles, model.CategoryAll, ""), 3)
	assert.Len(t, filterArticles(articles, "경제", ""), 1)
	assert.Len(t, filterArticles(articles, "", "금리"), 2)

	got := filterArticles(articles, "기술", "금리")
	require.Len(t, got, 1)
	assert.Equal(t, "신형 칩 공개", got[0].Title)

	assert.Empty(t, filterArticles(articles, "정치", "금리"))
}

func TestWriteArticles_JSON(t *testing.T) {
	run := outputRun()
	var buf bytes.Buffer
	require.NoError(t, writeArticles(&buf, "", run, run.Result.Articles[:1]))

	var doc runOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, model.RunStatusComplete, doc.Status)
	assert.Equal(t, run.Result.Categories, doc.Categories)
	require.Len(t, doc.Articles, 1)
	assert.Equal(t, "금리 동결", doc.Articles[0].Title)
}

func TestWriteArticles_JSONWithoutResult(t *testing.T) {
	run := &model.Run{ID: "run-2", Status: model.RunStatusCancelled}
	var buf bytes.Buffer
	require.NoError(t, writeArticles(&buf, formatJSON, run, nil))
	assert.Contains(t, buf.String(), `"status": "cancelled"`)
}

func TestWriteArticles_Text(t *testing.T) {
	run := outputRun()
	var buf bytes.Buffer
	require.NoError(t, writeArticles(&buf, "txt", run, run.Result.Articles))
	assert.Contains(t, buf.String(), "## 총선 일정")
}

func TestWriteArticles_UnknownFormat(t *testing.T) {
	run := outputRun()
	err := writeArticles(&bytes.Buffer{}, "pdf", run, run.Result.Articles)
	assert.ErrorContains(t, err, "unknown format")
}

func TestOpenOutput(t *testing.T) {
	w, err := openOutput("")
	require.NoError(t, err)
	assert.IsType(t, nopCloser{}, w)
	assert.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "out.csv")
	w, err = openOutput(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestOpenOutput_BadPath(t *testing.T) {
	_, err := openOutput(filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.Error(t, err)
}

func TestFormatSites(t *testing.T) {
	var buf bytes.Buffer
	formatSites(&buf, []model.SiteConfig{
		{RootURL: "https://news.example.com/", LinkSelector: "a.headline"},
		{RootURL: "https://biz.example.com/", LinkSelector: "li a", TitleSelectors: []string{"h1.title"}},
	})

	out := buf.String()
	assert.Contains(t, out, "HOST")
	assert.Contains(t, out, "news.example.com")
	assert.Contains(t, out, "a.headline")
	assert.Contains(t, out, "h1 | h2 | h3")
	assert.Contains(t, out, "h1.title")
}
