package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	result := RenderMarkdown("Rest and drink fluids")
	assert.Contains(t, result, "Rest and drink fluids")
}

func TestRenderMarkdown_Bold(t *testing.T) {
	result := RenderMarkdown("**seek care** if symptoms worsen")
	assert.Contains(t, result, "<strong>seek care</strong>")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[guidance](https://example.com)")
	assert.Contains(t, result, `href="https://example.com"`)
	assert.Contains(t, result, "nofollow")
	assert.Contains(t, result, "noreferrer")
	assert.Contains(t, result, "guidance</a>")
}

func TestRenderMarkdown_SanitizesScript(t *testing.T) {
	result := RenderMarkdown(`<script>alert("xss")</script>`)
	assert.NotContains(t, result, "<script>")
}

func TestRenderMarkdown_SanitizesEventHandlers(t *testing.T) {
	result := RenderMarkdown(`<img src="x" onerror="alert(1)">`)
	assert.NotContains(t, result, "onerror")
}

func TestRenderMarkdown_GFMStrikethrough(t *testing.T) {
	result := RenderMarkdown("~~deleted~~")
	assert.Contains(t, result, "<del>deleted</del>")
}

func TestRenderMarkdown_GFMTable(t *testing.T) {
	result := RenderMarkdown("| Dose | Time |\n|---|---|\n| 1 | am |")
	assert.Contains(t, result, "<table>")
	assert.Contains(t, result, "<td>am</td>")
}
