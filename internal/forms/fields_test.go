package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	t.Parallel()

	byName := func(fields []Field) map[string]Field {
		m := make(map[string]Field, len(fields))
		for _, f := range fields {
			m[f.Name] = f
		}
		return m
	}

	t.Run("wifi", func(t *testing.T) {
		fields := Fields(WiFi)
		require.Len(t, fields, 4)
		assert.Equal(t, "ssid", fields[0].Name)

		m := byName(fields)
		assert.Equal(t, Field{Name: "ssid", Input: InputText, Required: true, Max: 32}, m["ssid"])
		assert.False(t, m["password"].Required)
		assert.Equal(t, InputSelect, m["encryption"].Input)
		assert.Equal(t, []string{"WPA", "WEP", "nopass"}, m["encryption"].Options)
		assert.Equal(t, "WPA", m["encryption"].Default)
		assert.Equal(t, InputCheckbox, m["hidden"].Input)
	})

	t.Run("input kinds follow validation", func(t *testing.T) {
		assert.Equal(t, InputURL, byName(Fields(Website))["url"].Input)
		assert.Equal(t, InputEmail, byName(Fields(Email))["email"].Input)
		assert.Equal(t, InputTextarea, byName(Fields(Email))["body"].Input)
		assert.Equal(t, InputTel, byName(Fields(SMS))["phone"].Input)
		assert.Equal(t, InputTextarea, byName(Fields(Text))["text"].Input)
	})

	t.Run("file backed", func(t *testing.T) {
		m := byName(Fields(PDF))
		assert.Equal(t, InputHidden, m["fileId"].Input)
		assert.True(t, m["fileId"].Required)
		assert.Equal(t, InputHidden, m["fileName"].Input)
		assert.NotContains(t, m, "fileUrl")
		assert.Equal(t, InputText, m["title"].Input)
	})

	t.Run("every type has fields", func(t *testing.T) {
		for _, typ := range Types() {
			assert.NotEmpty(t, Fields(typ), typ)
		}
		assert.Nil(t, Fields("fax"))
	})
}
