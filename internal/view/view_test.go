package view

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/nsilverman/compete/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessages = map[string]string{
	"dashboard":             "Dashboard",
	"choose_contest":        "Choose Contest",
	"please_choose_contest": "Please choose a contest",
	"no_contest":            "No contest available",
	"compete":               "Compete!",
}

func testLookup(key string) string {
	if text, ok := testMessages[key]; ok {
		return text
	}
	return key
}

func TestRenderContestSelectEmpty(t *testing.T) {
	for _, contests := range [][]models.ContestSummary{nil, {}} {
		out, err := ContestSelectHTML(contests, testLookup)
		require.NoError(t, err)

		assert.Contains(t, out, "No contest available")
		assert.Contains(t, out, `class="alert alert-error"`)
		assert.NotContains(t, out, "<select")
		assert.NotContains(t, out, "<form")
		assert.NotContains(t, out, `type="submit"`)
		assert.NotContains(t, out, "Compete!")
	}
}

func TestRenderContestSelectList(t *testing.T) {
	contests := []models.ContestSummary{
		{ID: 1, Name: "Spring Cup"},
		{ID: 2, Name: "Winter Cup"},
	}

	out, err := ContestSelectHTML(contests, testLookup)
	require.NoError(t, err)

	spring := strings.Index(out, `<option value="1">Spring Cup</option>`)
	winter := strings.Index(out, `<option value="2">Winter Cup</option>`)
	require.NotEqual(t, -1, spring)
	require.NotEqual(t, -1, winter)
	assert.Less(t, spring, winter)

	assert.Equal(t, 2, strings.Count(out, "<option "))
	assert.Equal(t, 1, strings.Count(out, `<button type="submit"`))
	assert.Contains(t, out, `<i class="icon-fire icon-white"></i> Compete!</button>`)
	assert.Contains(t, out, `<select name="form[contest_id]" class="span10">`)
	assert.Contains(t, out, `<form class="form-inline" action="" method="post">`)
	assert.NotContains(t, out, "No contest available")
}

func TestRenderContestSelectKeepsInputOrder(t *testing.T) {
	contests := []models.ContestSummary{
		{ID: 30, Name: "C"},
		{ID: 10, Name: "A"},
		{ID: 20, Name: "B"},
	}

	out, err := ContestSelectHTML(contests, testLookup)
	require.NoError(t, err)

	last := -1
	for _, c := range contests {
		idx := strings.Index(out, `<option value="`+strconv.FormatInt(c.ID, 10)+`">`+c.Name+`</option>`)
		require.NotEqual(t, -1, idx, "missing option %d", c.ID)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestRenderContestSelectHeader(t *testing.T) {
	out, err := ContestSelectHTML(nil, testLookup)
	require.NoError(t, err)

	assert.Contains(t, out, `<i class="icon-home"></i> Dashboard`)
	assert.Contains(t, out, "<h3>Choose Contest</h3>")
	assert.Contains(t, out, "<p>Please choose a contest</p>")
}

func TestRenderContestSelectIsIdempotent(t *testing.T) {
	contests := []models.ContestSummary{{ID: 1, Name: "Spring Cup"}}

	first, err := ContestSelectHTML(contests, testLookup)
	require.NoError(t, err)
	second, err := ContestSelectHTML(contests, testLookup)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderContestSelectEscapesNames(t *testing.T) {
	contests := []models.ContestSummary{{ID: 1, Name: `<script>alert("x")</script> & Co`}}

	out, err := ContestSelectHTML(contests, testLookup)
	require.NoError(t, err)

	assert.NotContains(t, out, "<script>alert")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&amp; Co")
}

func TestRenderContestSelectWithoutLookup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderContestSelect(&buf, nil, nil))
	assert.Contains(t, buf.String(), "no_contest")
}

func TestRendererPageWrapsLayout(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Page(&buf, ContestSelectView, ContestSelectData{
		Base:     Base{Lang: testLookup, Locale: "en"},
		Contests: []models.ContestSummary{{ID: 5, Name: "Summer Cup"}},
		Error:    "Please choose a valid contest.",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<html lang="en">`)
	assert.Contains(t, out, `<option value="5">Summer Cup</option>`)
	assert.Contains(t, out, "Please choose a valid contest.")
}

func TestRendererContestEntered(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	lookup := func(key string) string { return "[" + key + "]" }

	var buf bytes.Buffer
	require.NoError(t, r.Fragment(&buf, ContestEnteredView, ContestEnteredData{
		Base:    Base{Lang: lookup},
		Contest: models.ContestSummary{ID: 3, Name: "Spring Cup"},
	}))
	assert.Contains(t, buf.String(), "[entered_contest]")
	assert.Contains(t, buf.String(), "<h3>Spring Cup</h3>")

	buf.Reset()
	require.NoError(t, r.Fragment(&buf, ContestEnteredView, ContestEnteredData{
		Base:           Base{Lang: lookup},
		Contest:        models.ContestSummary{ID: 3, Name: "Spring Cup"},
		AlreadyEntered: true,
	}))
	assert.Contains(t, buf.String(), "[already_entered]")
}

func TestRendererUnknownView(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	assert.Error(t, r.Fragment(&bytes.Buffer{}, "missing.html", nil))
}
