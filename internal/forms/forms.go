// Package forms holds the content form of every QR type: its fields, their
// validation and the payload the QR code encodes.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Type identifies a kind of QR code.
type Type string

const (
	Website  Type = "website"
	Text     Type = "text"
	Email    Type = "email"
	SMS      Type = "sms"
	WiFi     Type = "wifi"
	WhatsApp Type = "whatsapp"
	VCard    Type = "vcard"
	PDF      Type = "pdf"
	Image    Type = "image"
	Video    Type = "video"
	App      Type = "app"
)

// FormData is the loosely typed value set of a form, as submitted by clients
// and persisted with the QR code.
type FormData map[string]any

// Form is the content form of one QR type.
type Form interface {
	Type() Type
	// Validate returns a *ValidationError listing the invalid fields.
	Validate() error
	Values() FormData
	// Content is the string the QR code encodes.
	Content() string
}

// FileBacked is implemented by forms whose content is an uploaded file.
type FileBacked interface {
	FileID() string
	SetFileURL(u string)
}

var ErrUnknownType = errors.New("unknown QR type")

var registry = map[Type]func() Form{
	Website:  func() Form { return &WebsiteForm{} },
	Text:     func() Form { return &TextForm{} },
	Email:    func() Form { return &EmailForm{} },
	SMS:      func() Form { return &SMSForm{} },
	WiFi:     func() Form { return &WiFiForm{Encryption: "WPA"} },
	WhatsApp: func() Form { return &WhatsAppForm{} },
	VCard:    func() Form { return &VCardForm{} },
	PDF:      func() Form { return &FileForm{Kind: PDF} },
	Image:    func() Form { return &FileForm{Kind: Image} },
	Video:    func() Form { return &FileForm{Kind: Video} },
	App:      func() Form { return &AppForm{} },
}

// Types lists the supported QR types in a stable order.
func Types() []Type {
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ParseType validates s as a QR type.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// New builds the form of type t from values. Values are weakly typed, so
// "true" decodes into a bool field. Unknown keys are ignored.
func New(t Type, values FormData) (Form, error) {
	mk, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	f := mk()
	if len(values) == 0 {
		return f, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           f,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(map[string]any(values)); err != nil {
		return nil, fmt.Errorf("decode %s form: %w", t, err)
	}
	return f, nil
}

// ValidationError maps invalid fields to a message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			_, err := NormalizeURL(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			n := len(digits(fl.Field().String()))
			return n >= 6 && n <= 15
		})
	})
	return validate
}

// check validates the struct tags of f.
func check(f any) error {
	err := getValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		ve.Fields[fe.Field()] = message(fe)
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless", "required_without", "required_without_all":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "httpurl":
		return "must be a valid http or https URL"
	case "phone":
		return "must be a valid phone number"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// values encodes f into FormData using its json field names.
func values(f any) FormData {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "json",
	})
	if err == nil {
		_ = dec.Decode(f)
	}
	return FormData(out)
}

// NormalizeURL trims s, defaults the scheme to https and requires an http(s)
// URL with a host.
func NormalizeURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fmt.Errorf("URL is required")
	}
	if !strings.Contains(v, "://") {
		v = "https://" + v
	}
	if len(v) > 4096 {
		return "", fmt.Errorf("URL is too long")
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("only http and https URLs are supported")
	}
	if u.Host == "" || strings.HasPrefix(u.Host, ".") {
		return "", fmt.Errorf("URL must include a valid host")
	}
	return u.String(), nil
}

var nonDigits = regexp.MustCompile(`\D`)

func digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
