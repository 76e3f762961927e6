package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"
)

func render(t *testing.T, p BuilderProps) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, BuilderPage(p).Render(context.Background(), &buf))
	return buf.String()
}

const base = "/api/builder/sessions/s-1"

func TestBuilderPage_TypeStep(t *testing.T) {
	html := render(t, BuilderProps{SessionID: "s-1", Step: 1, Custom: customization.DefaultData()})

	assert.Contains(t, html, `data-step="1"`)
	assert.Contains(t, html, `hx-post="`+base+`/type" hx-vals='{"type":"wifi"}'`)
	assert.Contains(t, html, `hx-post="`+base+`/continue"`)
	assert.NotContains(t, html, `hx-post="`+base+`/back"`)
	assert.NotContains(t, html, `id="content-form"`)
	assert.NotContains(t, html, `/customization"`)
	assert.NotContains(t, html, `/save"`)
}

func TestBuilderPage_ContentStep(t *testing.T) {
	html := render(t, BuilderProps{
		SessionID: "s-1",
		Step:      2,
		QRType:    "wifi",
		FormData:  map[string]any{"ssid": "Cafe <5G>", "hidden": true},
		Custom:    customization.DefaultData(),
	})

	assert.Contains(t, html, `<form id="content-form" hx-post="`+base+`/continue"`)
	assert.Contains(t, html, `form="content-form"`)
	assert.Contains(t, html, `name="ssid" value="Cafe &lt;5G&gt;"`)
	assert.Contains(t, html, `required maxlength="32"`)
	assert.Contains(t, html, `<option value="WPA" selected>WPA</option>`)
	assert.Contains(t, html, `name="hidden" value="true" checked`)
	assert.Contains(t, html, `hx-post="`+base+`/back"`)
	assert.NotContains(t, html, `hx-post="`+base+`/type"`)
	assert.NotContains(t, html, `/save"`)
	assert.NotContains(t, html, `data-file-upload`)
}

func TestBuilderPage_FileContentStep(t *testing.T) {
	html := render(t, BuilderProps{
		SessionID: "s-1",
		Step:      2,
		QRType:    "pdf",
		FormData:  map[string]any{"fileId": "f-1.pdf", "fileName": "menu.pdf"},
		Custom:    customization.DefaultData(),
	})

	assert.Contains(t, html, `data-file-upload hx-post="`+base+`/file"`)
	assert.Contains(t, html, `<input type="hidden" name="fileId" value="f-1.pdf">`)
	assert.Contains(t, html, `<span data-file-name class="text-sm text-gray-500">menu.pdf</span>`)
	assert.NotContains(t, html, `name="fileUrl"`)
}

func TestBuilderPage_DesignStep(t *testing.T) {
	custom := customization.DefaultData().SelectFrame(customization.FrameCard)
	custom.Frame.Text = "Scan me"
	html := render(t, BuilderProps{SessionID: "s-1", Step: 3, QRType: "website", Custom: custom})

	assert.Contains(t, html, `hx-put="`+base+`/customization" hx-vals='{"dots":"dots-rounded"}'`)
	assert.Contains(t, html, `hx-vals='{"cornerSquare":"corner-square-dot"}'`)
	assert.Contains(t, html, `hx-vals='{"cornerDot":"corner-dot-rounded"}'`)
	assert.Contains(t, html, `name="fg" value="#000000"`)
	assert.Contains(t, html, `name="bg"`)
	assert.Contains(t, html, `name="frameText" value="Scan me"`)
	assert.Contains(t, html, `name="frameColor"`)
	assert.Contains(t, html, `hx-vals='{"frameId":"frame-ribbon"}'`)
	assert.Contains(t, html, `hx-vals='{"logoId":"logo-wifi"}'`)
	assert.Contains(t, html, `hx-post="`+base+`/save"`)
	assert.Contains(t, html, `hx-post="`+base+`/back"`)
	assert.NotContains(t, html, `id="content-form"`)
}

func TestBuilderPage_NoFrameHidesFrameFields(t *testing.T) {
	html := render(t, BuilderProps{SessionID: "s-1", Step: 3, QRType: "text", Custom: customization.DefaultData()})
	assert.NotContains(t, html, `name="frameText"`)
}
