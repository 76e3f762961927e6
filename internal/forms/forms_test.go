package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	t.Parallel()

	got, err := ParseType(" WiFi ")
	require.NoError(t, err)
	assert.Equal(t, WiFi, got)

	_, err = ParseType("fax")
	assert.ErrorIs(t, err, ErrUnknownType)

	assert.Len(t, Types(), 11)
	assert.Equal(t, App, Types()[0])
}

func TestNew_UnknownType(t *testing.T) {
	t.Parallel()

	_, err := New("fax", nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		typ     Type
		values  FormData
		invalid []string
	}{
		{"website ok", Website, FormData{"url": "getqr.com/pricing"}, nil},
		{"website empty", Website, FormData{"url": ""}, []string{"url"}},
		{"website ftp", Website, FormData{"url": "ftp://example.com"}, []string{"url"}},
		{"text empty", Text, FormData{}, []string{"text"}},
		{"email ok", Email, FormData{"email": "hi@getqr.com"}, nil},
		{"email bad", Email, FormData{"email": "nope"}, []string{"email"}},
		{"sms short phone", SMS, FormData{"phone": "123"}, []string{"phone"}},
		{"wifi ok", WiFi, FormData{"ssid": "home", "password": "secret", "encryption": "WPA"}, nil},
		{"wifi open network needs no password", WiFi, FormData{"ssid": "cafe", "encryption": "nopass"}, nil},
		{"wifi missing password", WiFi, FormData{"ssid": "home", "encryption": "WEP"}, []string{"password"}},
		{"wifi bad encryption", WiFi, FormData{"ssid": "home", "password": "x", "encryption": "WPA3"}, []string{"encryption"}},
		{"whatsapp ok", WhatsApp, FormData{"phone": "+1 (555) 010-9999"}, nil},
		{"vcard missing name", VCard, FormData{"email": "a@b.co"}, []string{"firstName"}},
		{"vcard bad website", VCard, FormData{"firstName": "Ada", "website": "ftp://x"}, []string{"website"}},
		{"pdf needs file", PDF, FormData{"title": "Menu"}, []string{"fileId"}},
		{"video ok", Video, FormData{"fileId": "f-1"}, nil},
		{"app needs a link", App, FormData{}, []string{"appleUrl"}},
		{"app google only", App, FormData{"googleUrl": "https://play.google.com/store/apps/details?id=x"}, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := New(tt.typ, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, f.Type())

			err = f.Validate()
			if len(tt.invalid) == 0 {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			for _, field := range tt.invalid {
				assert.Contains(t, ve.Fields, field)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	f, err := New(WiFi, FormData{"encryption": "WPA"})
	require.NoError(t, err)
	err = f.Validate()
	require.Error(t, err)
	assert.Equal(t, "invalid form: password is required; ssid is required", err.Error())
}

func TestContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		typ    Type
		values FormData
		want   string
	}{
		{"website adds scheme", Website, FormData{"url": " getqr.com/pricing "}, "https://getqr.com/pricing"},
		{"text", Text, FormData{"text": "hello"}, "hello"},
		{"email", Email, FormData{"email": "hi@getqr.com", "subject": "Hello there"}, "mailto:hi@getqr.com?subject=Hello%20there"},
		{"sms", SMS, FormData{"phone": "+44 20 7946 0000", "message": "hi"}, "SMSTO:+442079460000:hi"},
		{"wifi", WiFi, FormData{"ssid": "my;net", "password": "p:w", "encryption": "WPA", "hidden": "true"}, `WIFI:T:WPA;S:my\;net;P:p\:w;H:true;;`},
		{"wifi open", WiFi, FormData{"ssid": "cafe", "encryption": "nopass"}, "WIFI:T:nopass;S:cafe;;"},
		{"whatsapp", WhatsApp, FormData{"phone": "+1 555 010 9999", "message": "hi there"}, "https://wa.me/15550109999?text=hi+there"},
		{"image", Image, FormData{"fileId": "f-1", "fileUrl": "https://storage.getqr.com/f-1"}, "https://storage.getqr.com/f-1"},
		{"app prefers apple", App, FormData{"googleUrl": "play.google.com/x", "appleUrl": "apps.apple.com/y"}, "https://apps.apple.com/y"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := New(tt.typ, tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Content())
		})
	}
}

func TestVCardContent(t *testing.T) {
	t.Parallel()

	f, err := New(VCard, FormData{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"organization": "Analytical, Engines",
		"mobile":       "+44 7700 900000",
		"city":         "London",
	})
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	assert.Equal(t, "BEGIN:VCARD\r\n"+
		"VERSION:3.0\r\n"+
		"N:Lovelace;Ada;;;\r\n"+
		"FN:Ada Lovelace\r\n"+
		`ORG:Analytical\, Engines`+"\r\n"+
		"TEL;TYPE=CELL:+44 7700 900000\r\n"+
		"ADR;TYPE=WORK:;;;London;;;\r\n"+
		"END:VCARD", f.Content())
}

func TestFileBacked(t *testing.T) {
	t.Parallel()

	f, err := New(PDF, FormData{"fileId": "abc"})
	require.NoError(t, err)

	fb, ok := f.(FileBacked)
	require.True(t, ok)
	assert.Equal(t, "abc", fb.FileID())
	assert.Empty(t, f.Content())

	fb.SetFileURL("https://storage.getqr.com/abc")
	assert.Equal(t, "https://storage.getqr.com/abc", f.Content())

	_, ok = Form(&WebsiteForm{}).(FileBacked)
	assert.False(t, ok)
}

func TestValues(t *testing.T) {
	t.Parallel()

	f, err := New(WiFi, FormData{"ssid": "home", "password": "secret", "encryption": "WEP", "hidden": true, "extra": 1})
	require.NoError(t, err)

	v := f.Values()
	assert.Equal(t, "home", v["ssid"])
	assert.Equal(t, "secret", v["password"])
	assert.Equal(t, "WEP", v["encryption"])
	assert.Equal(t, true, v["hidden"])
	assert.NotContains(t, v, "extra")

	again, err := New(WiFi, v)
	require.NoError(t, err)
	assert.Equal(t, f, again)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	u, err := NormalizeURL("http://example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a?b=c", u)

	for _, bad := range []string{"", "   ", "ftp://example.com", "https://"} {
		_, err := NormalizeURL(bad)
		assert.Error(t, err, bad)
	}
}
