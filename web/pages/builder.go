// Package pages holds the server rendered pages.
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	twmerge "github.com/Oudwins/tailwind-merge-go"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/forms"
)

// BuilderProps is what the builder page needs from the session.
type BuilderProps struct {
	SessionID string
	Step      int
	QRType    string
	Title     string
	// FormData prefills the content form.
	FormData map[string]any
	// PreviewSVG is the current rendering, inlined so the page does not wait
	// for the socket.
	PreviewSVG string
	Custom     customization.Data
}

const builderScript = `
(function () {
  var page = document.querySelector("main");
  var el = document.getElementById("qr-preview");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + el.dataset.ws);
  ws.onmessage = function (ev) {
    var st = JSON.parse(ev.data);
    if (st.svg) { el.innerHTML = st.svg; }
    el.classList.toggle("opacity-60", !!st.loading);
  };
  // step and type changes swap in other controls
  document.body.addEventListener("builder:state", function (ev) {
    var st = ev.detail || {};
    if (String(st.step) !== page.dataset.step || (st.qrType || "") !== page.dataset.type) {
      location.reload();
    }
  });
  document.body.addEventListener("htmx:afterRequest", function (ev) {
    var up = ev.detail.elt;
    if (!up.matches || !up.matches("[data-file-upload]") || !ev.detail.successful) { return; }
    var f = JSON.parse(ev.detail.xhr.responseText);
    var form = document.getElementById("content-form");
    form.elements.fileId.value = f.fileId;
    form.elements.fileName.value = f.fileName;
    up.querySelector("[data-file-name]").textContent = f.fileName;
  });
  document.body.addEventListener("click", function (ev) {
    var b = ev.target.closest("[data-toast-dismiss]");
    if (b) { b.closest("[data-toast]").remove(); }
  });
})();
`

func BuilderPage(p BuilderProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base := "/api/builder/sessions/" + templ.EscapeString(p.SessionID)
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>QR Builder</title>`)
		b.WriteString(`<script src="https://cdn.tailwindcss.com"></script>`)
		b.WriteString(`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)
		b.WriteString(`</head><body class="bg-gray-50 text-gray-900">`)
		fmt.Fprintf(&b, `<main data-step="%d" data-type="%s" class="mx-auto grid max-w-6xl gap-8 p-8 md:grid-cols-[1fr_360px]">`,
			p.Step, templ.EscapeString(p.QRType))

		b.WriteString(`<section class="space-y-8">`)
		fmt.Fprintf(&b, `<ol class="flex gap-4 text-sm">%s%s%s</ol>`,
			stepItem(1, "Type", p.Step), stepItem(2, "Content", p.Step), stepItem(3, "Design", p.Step))

		switch p.Step {
		case 1:
			writeTypeStep(&b, base, p)
		case 2:
			writeContentStep(&b, base, p)
		default:
			writeDesignStep(&b, base, p)
		}
		b.WriteString(`</section>`)

		b.WriteString(`<aside class="space-y-4">`)
		fmt.Fprintf(&b, `<div id="qr-preview" data-ws="%s/preview/ws" class="rounded-xl bg-white p-4 shadow">%s</div>`, base, p.PreviewSVG)
		fmt.Fprintf(&b, `<input name="title" value="%s" placeholder="Name your QR code" hx-put="%s/title" hx-trigger="change" hx-target="#toasts" hx-swap="beforeend" class="w-full rounded border px-3 py-2">`,
			templ.EscapeString(p.Title), base)
		b.WriteString(`<div class="flex gap-2">`)
		if p.Step > 1 {
			fmt.Fprintf(&b, `<button hx-post="%s/back" hx-target="#toasts" hx-swap="beforeend" class="flex-1 rounded border px-3 py-2">Back</button>`, base)
		}
		switch p.Step {
		case 1:
			fmt.Fprintf(&b, `<button hx-post="%s/continue" hx-target="#toasts" hx-swap="beforeend" class="flex-1 rounded bg-gray-900 px-3 py-2 text-white">Continue</button>`, base)
		case 2:
			b.WriteString(`<button type="submit" form="content-form" class="flex-1 rounded bg-gray-900 px-3 py-2 text-white">Continue</button>`)
		default:
			fmt.Fprintf(&b, `<button hx-post="%s/save" hx-target="#toasts" hx-swap="beforeend" class="flex-1 rounded bg-gray-900 px-3 py-2 text-white">Save</button>`, base)
		}
		b.WriteString(`</div>`)
		fmt.Fprintf(&b, `<div class="flex gap-2 text-sm"><a href="%s/export?format=png&size=download">PNG</a><a href="%s/export?format=jpg&size=download">JPG</a><a href="%s/export?format=svg">SVG</a></div>`, base, base, base)
		b.WriteString(`</aside></main>`)

		b.WriteString(`<div id="toasts"></div>`)
		b.WriteString(`<script>` + builderScript + `</script>`)
		b.WriteString(`</body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeTypeStep(b *strings.Builder, base string, p BuilderProps) {
	b.WriteString(`<div><h2 class="mb-3 font-semibold">QR type</h2><div class="grid grid-cols-3 gap-2">`)
	for _, t := range forms.Types() {
		fmt.Fprintf(b, `<button hx-post="%s/type" hx-vals='{"type":"%s"}' hx-target="#toasts" hx-swap="beforeend" class="%s">%s</button>`,
			base, t, optionClass(string(t) == p.QRType), t)
	}
	b.WriteString(`</div></div>`)
}

// writeContentStep renders the form of the selected type. File backed types
// upload first and carry the stored file id in hidden inputs.
func writeContentStep(b *strings.Builder, base string, p BuilderProps) {
	t := forms.Type(p.QRType)
	fields := forms.Fields(t)

	fmt.Fprintf(b, `<div><h2 class="mb-3 font-semibold">%s content</h2>`, templ.EscapeString(p.QRType))
	for _, f := range fields {
		if f.Name == "fileId" {
			fmt.Fprintf(b, `<form data-file-upload hx-post="%s/file" hx-encoding="multipart/form-data" hx-swap="none" class="mb-3 flex items-center gap-2">`, base)
			b.WriteString(`<input type="file" name="file" class="text-sm">`)
			b.WriteString(`<button class="rounded border px-3 py-1 text-sm">Upload</button>`)
			fmt.Fprintf(b, `<span data-file-name class="text-sm text-gray-500">%s</span></form>`, templ.EscapeString(formValue(p.FormData, "fileName", "")))
			break
		}
	}

	fmt.Fprintf(b, `<form id="content-form" hx-post="%s/continue" hx-target="#toasts" hx-swap="beforeend" class="space-y-3">`, base)
	for _, f := range fields {
		writeField(b, f, formValue(p.FormData, f.Name, f.Default))
	}
	b.WriteString(`</form></div>`)
}

func writeField(b *strings.Builder, f forms.Field, value string) {
	name := templ.EscapeString(f.Name)
	value = templ.EscapeString(value)
	var attrs string
	if f.Required {
		attrs += " required"
	}
	if f.Max > 0 {
		attrs += fmt.Sprintf(` maxlength="%d"`, f.Max)
	}
	const inputClass = "w-full rounded border px-3 py-2"

	switch f.Input {
	case forms.InputHidden:
		fmt.Fprintf(b, `<input type="hidden" name="%s" value="%s">`, name, value)
		return
	case forms.InputCheckbox:
		checked := ""
		if value == "true" {
			checked = " checked"
		}
		fmt.Fprintf(b, `<label class="flex items-center gap-2 text-sm"><input type="checkbox" name="%s" value="true"%s>%s</label>`, name, checked, name)
		return
	}

	fmt.Fprintf(b, `<label class="block text-sm"><span class="mb-1 block">%s</span>`, name)
	switch f.Input {
	case forms.InputTextarea:
		fmt.Fprintf(b, `<textarea name="%s" rows="4" class="%s"%s>%s</textarea>`, name, inputClass, attrs, value)
	case forms.InputSelect:
		fmt.Fprintf(b, `<select name="%s" class="%s">`, name, inputClass)
		for _, o := range f.Options {
			sel := ""
			if templ.EscapeString(o) == value {
				sel = " selected"
			}
			fmt.Fprintf(b, `<option value="%s"%s>%s</option>`, templ.EscapeString(o), sel, templ.EscapeString(o))
		}
		b.WriteString(`</select>`)
	default:
		fmt.Fprintf(b, `<input type="%s" name="%s" value="%s" class="%s"%s>`, f.Input, name, value, inputClass, attrs)
	}
	b.WriteString(`</label>`)
}

func formValue(data map[string]any, name, fallback string) string {
	v, ok := data[name]
	if !ok || v == nil {
		return fallback
	}
	return fmt.Sprint(v)
}

func writeDesignStep(b *strings.Builder, base string, p BuilderProps) {
	custom := p.Custom

	b.WriteString(`<div><h2 class="mb-3 font-semibold">Dots</h2><div class="grid grid-cols-6 gap-2">`)
	writeStyleOptions(b, base, "dots", customization.DotsStyles, custom.Style.DotsStyle)
	b.WriteString(`</div></div>`)

	b.WriteString(`<div><h2 class="mb-3 font-semibold">Corners</h2><div class="grid grid-cols-4 gap-2">`)
	writeStyleOptions(b, base, "cornerSquare", customization.CornerSquareStyles, custom.Shape.CornerSquareStyle)
	b.WriteString(`</div><div class="mt-2 grid grid-cols-4 gap-2">`)
	writeStyleOptions(b, base, "cornerDot", customization.CornerDotStyles, custom.Shape.CornerDotStyle)
	b.WriteString(`</div></div>`)

	b.WriteString(`<div><h2 class="mb-3 font-semibold">Colours</h2>`)
	fmt.Fprintf(b, `<form hx-put="%s/customization" hx-trigger="change" hx-target="#toasts" hx-swap="beforeend" class="flex gap-4 text-sm">`, base)
	fmt.Fprintf(b, `<label class="flex items-center gap-2">Foreground <input type="color" name="fg" value="%s"></label>`, templ.EscapeString(custom.Style.ForegroundColor))
	fmt.Fprintf(b, `<label class="flex items-center gap-2">Background <input type="color" name="bg" value="%s"></label>`, templ.EscapeString(custom.Style.BackgroundColor))
	b.WriteString(`</form></div>`)

	b.WriteString(`<div><h2 class="mb-3 font-semibold">Frame</h2><div class="grid grid-cols-4 gap-2">`)
	for _, f := range customization.Frames {
		fmt.Fprintf(b, `<button hx-post="%s/frame" hx-vals='{"frameId":"%s"}' hx-target="#toasts" hx-swap="beforeend" class="%s"><img src="/web/assets/%s" alt="%s" class="mx-auto h-10"></button>`,
			base, f.ID, optionClass(f.ID == custom.Frame.ID), f.Icon, f.ID)
	}
	b.WriteString(`</div>`)
	if custom.Frame.ID != customization.FrameNone {
		fmt.Fprintf(b, `<form hx-put="%s/customization" hx-trigger="change" hx-target="#toasts" hx-swap="beforeend" class="mt-3 flex flex-wrap gap-4 text-sm">`, base)
		fmt.Fprintf(b, `<input name="frameText" value="%s" maxlength="%d" placeholder="Frame text" class="rounded border px-3 py-1">`,
			templ.EscapeString(custom.Frame.Text), customization.MaxFrameTextLength)
		fmt.Fprintf(b, `<label class="flex items-center gap-2">Frame <input type="color" name="frameColor" value="%s"></label>`, templ.EscapeString(custom.Frame.Color))
		fmt.Fprintf(b, `<label class="flex items-center gap-2">Text <input type="color" name="frameTextColor" value="%s"></label>`, templ.EscapeString(custom.Frame.TextColor))
		b.WriteString(`</form>`)
	}
	b.WriteString(`</div>`)

	b.WriteString(`<div><h2 class="mb-3 font-semibold">Logo</h2><div class="grid grid-cols-4 gap-2">`)
	for _, l := range customization.SuggestedLogos {
		fmt.Fprintf(b, `<button hx-post="%s/logo/suggested" hx-vals='{"logoId":"%s"}' hx-target="#toasts" hx-swap="beforeend" class="%s"><img src="/web/assets/%s" alt="%s" class="mx-auto h-8"></button>`,
			base, l.ID, optionClass(l.ID == custom.Logo.ID), l.IconSrc, templ.EscapeString(l.Label))
	}
	b.WriteString(`</div>`)
	fmt.Fprintf(b, `<form hx-post="%s/logo" hx-encoding="multipart/form-data" hx-target="#toasts" hx-swap="beforeend" class="mt-3 flex gap-2">`, base)
	b.WriteString(`<input type="file" name="file" accept="image/png,image/jpeg,image/svg+xml,image/webp" class="text-sm">`)
	b.WriteString(`<button class="rounded bg-gray-900 px-3 py-1 text-sm text-white">Upload</button></form></div>`)
}

func writeStyleOptions(b *strings.Builder, base, field string, options []customization.StyleOption, current string) {
	for _, o := range options {
		fmt.Fprintf(b, `<button hx-put="%s/customization" hx-vals='{"%s":"%s"}' hx-target="#toasts" hx-swap="beforeend" class="%s"><img src="/web/assets/%s" alt="%s" class="mx-auto h-8"></button>`,
			base, field, o.ID, optionClass(o.ID == current), o.Icon, o.ID)
	}
}

func stepItem(n int, label string, current int) string {
	cls := twmerge.Merge("rounded-full px-3 py-1 text-gray-500", activeClass(n == current))
	return fmt.Sprintf(`<li class="%s">%d. %s</li>`, cls, n, label)
}

func optionClass(active bool) string {
	return twmerge.Merge("rounded-lg border border-gray-200 bg-white p-2 text-sm hover:border-gray-400", activeClass(active))
}

func activeClass(active bool) string {
	if active {
		return "border-gray-900 bg-gray-900 text-white"
	}
	return ""
}
