package forms

import (
	"reflect"
	"strconv"
	"strings"
)

// Input kinds of a Field.
const (
	InputText     = "text"
	InputTextarea = "textarea"
	InputEmail    = "email"
	InputURL      = "url"
	InputTel      = "tel"
	InputSelect   = "select"
	InputCheckbox = "checkbox"
	InputHidden   = "hidden"
)

// textareaMin is the length limit from which a field is edited as a textarea.
const textareaMin = 500

// Field describes one input of a content form, as read from the form's
// struct tags.
type Field struct {
	Name     string
	Input    string
	Required bool
	Max      int
	Options  []string
	Default  string
}

// Fields lists the inputs of the form of type t in declaration order. Fields
// tagged field:"-" are filled by the server and not listed.
func Fields(t Type) []Field {
	mk, ok := registry[t]
	if !ok {
		return nil
	}
	f := mk()
	defaults := f.Values()

	rt := reflect.TypeOf(f).Elem()
	out := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" || sf.Tag.Get("field") == "-" {
			continue
		}
		fld := Field{Name: name, Input: InputText}
		for _, rule := range strings.Split(sf.Tag.Get("validate"), ",") {
			key, param, _ := strings.Cut(rule, "=")
			switch key {
			case "required":
				fld.Required = true
			case "max":
				fld.Max, _ = strconv.Atoi(param)
			case "email":
				fld.Input = InputEmail
			case "httpurl":
				fld.Input = InputURL
			case "phone":
				fld.Input = InputTel
			case "oneof":
				fld.Input = InputSelect
				fld.Options = strings.Fields(param)
			}
		}
		switch {
		case sf.Type.Kind() == reflect.Bool:
			fld.Input = InputCheckbox
		case fld.Input == InputText && fld.Max >= textareaMin:
			fld.Input = InputTextarea
		}
		if sf.Tag.Get("field") == "hidden" {
			fld.Input = InputHidden
		}
		if v, ok := defaults[name].(string); ok {
			fld.Default = v
		}
		out = append(out, fld)
	}
	return out
}
