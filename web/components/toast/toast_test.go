package toast

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	assert.Equal(t, VariantError, ParseVariant("destructive"))
	assert.Equal(t, VariantError, ParseVariant("Error"))
	assert.Equal(t, VariantInfo, ParseVariant("info"))
	assert.Equal(t, VariantSuccess, ParseVariant(""))
}

func TestClasses_OverrideWins(t *testing.T) {
	classes := strings.Fields(Classes(Props{Variant: VariantError, Class: "p-2"}))
	assert.Contains(t, classes, "p-2")
	assert.NotContains(t, classes, "p-4")
	assert.Contains(t, classes, "bg-red-50")
}

func TestToast_Render(t *testing.T) {
	var buf bytes.Buffer
	err := Toast(Props{
		Title:       "Could not save <QR>",
		Description: "Try again",
		Variant:     VariantError,
		Duration:    2000,
		Dismissible: true,
		Icon:        true,
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Could not save &lt;QR&gt;")
	assert.Contains(t, html, `data-duration="2000"`)
	assert.Contains(t, html, `data-lucide="x-circle"`)
	assert.Contains(t, html, "data-toast-dismiss")
}
