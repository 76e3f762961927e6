package forms

import (
	"net/url"
	"strings"
)

type WebsiteForm struct {
	URL string `json:"url" validate:"required,httpurl"`
}

func (f *WebsiteForm) Type() Type       { return Website }
func (f *WebsiteForm) Validate() error  { return check(f) }
func (f *WebsiteForm) Values() FormData { return values(f) }

func (f *WebsiteForm) Content() string {
	u, err := NormalizeURL(f.URL)
	if err != nil {
		return strings.TrimSpace(f.URL)
	}
	return u
}

type TextForm struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func (f *TextForm) Type() Type       { return Text }
func (f *TextForm) Validate() error  { return check(f) }
func (f *TextForm) Values() FormData { return values(f) }
func (f *TextForm) Content() string  { return f.Text }

type EmailForm struct {
	Address string `json:"email" validate:"required,email"`
	Subject string `json:"subject,omitempty" validate:"max=255"`
	Body    string `json:"body,omitempty" validate:"max=1500"`
}

func (f *EmailForm) Type() Type       { return Email }
func (f *EmailForm) Validate() error  { return check(f) }
func (f *EmailForm) Values() FormData { return values(f) }

// Content is a mailto URI.
func (f *EmailForm) Content() string {
	var q []string
	if f.Subject != "" {
		q = append(q, "subject="+url.PathEscape(f.Subject))
	}
	if f.Body != "" {
		q = append(q, "body="+url.PathEscape(f.Body))
	}
	s := "mailto:" + strings.TrimSpace(f.Address)
	if len(q) > 0 {
		s += "?" + strings.Join(q, "&")
	}
	return s
}

type SMSForm struct {
	Phone   string `json:"phone" validate:"required,phone"`
	Message string `json:"message,omitempty" validate:"max=1000"`
}

func (f *SMSForm) Type() Type       { return SMS }
func (f *SMSForm) Validate() error  { return check(f) }
func (f *SMSForm) Values() FormData { return values(f) }

func (f *SMSForm) Content() string {
	return "SMSTO:" + phoneNumber(f.Phone) + ":" + f.Message
}

type WiFiForm struct {
	SSID       string `json:"ssid" validate:"required,max=32"`
	Password   string `json:"password,omitempty" validate:"required_unless=Encryption nopass,max=63"`
	Encryption string `json:"encryption" validate:"oneof=WPA WEP nopass"`
	Hidden     bool   `json:"hidden,omitempty"`
}

func (f *WiFiForm) Type() Type       { return WiFi }
func (f *WiFiForm) Validate() error  { return check(f) }
func (f *WiFiForm) Values() FormData { return values(f) }

// Content is the WIFI: network configuration string.
func (f *WiFiForm) Content() string {
	var sb strings.Builder
	sb.WriteString("WIFI:T:")
	sb.WriteString(f.Encryption)
	sb.WriteString(";S:")
	sb.WriteString(wifiEscaper.Replace(f.SSID))
	sb.WriteString(";")
	if f.Encryption != "nopass" {
		sb.WriteString("P:")
		sb.WriteString(wifiEscaper.Replace(f.Password))
		sb.WriteString(";")
	}
	if f.Hidden {
		sb.WriteString("H:true;")
	}
	sb.WriteString(";")
	return sb.String()
}

var wifiEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, `:`, `\:`, `"`, `\"`)

type WhatsAppForm struct {
	Phone   string `json:"phone" validate:"required,phone"`
	Message string `json:"message,omitempty" validate:"max=1000"`
}

func (f *WhatsAppForm) Type() Type       { return WhatsApp }
func (f *WhatsAppForm) Validate() error  { return check(f) }
func (f *WhatsAppForm) Values() FormData { return values(f) }

// Content is a wa.me click-to-chat link.
func (f *WhatsAppForm) Content() string {
	s := "https://wa.me/" + digits(f.Phone)
	if f.Message != "" {
		s += "?text=" + url.QueryEscape(f.Message)
	}
	return s
}

type VCardForm struct {
	FirstName    string `json:"firstName" validate:"required,max=100"`
	LastName     string `json:"lastName,omitempty" validate:"max=100"`
	Organization string `json:"organization,omitempty" validate:"max=100"`
	JobTitle     string `json:"jobTitle,omitempty" validate:"max=100"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,phone"`
	Mobile       string `json:"mobile,omitempty" validate:"omitempty,phone"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Website      string `json:"website,omitempty" validate:"omitempty,httpurl"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	Zip          string `json:"zip,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	Note         string `json:"note,omitempty" validate:"max=500"`
}

func (f *VCardForm) Type() Type       { return VCard }
func (f *VCardForm) Validate() error  { return check(f) }
func (f *VCardForm) Values() FormData { return values(f) }

// Content is a vCard 3.0 document.
func (f *VCardForm) Content() string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:" + vcardEscaper.Replace(f.LastName) + ";" + vcardEscaper.Replace(f.FirstName) + ";;;",
		"FN:" + vcardEscaper.Replace(strings.TrimSpace(f.FirstName+" "+f.LastName)),
	}
	add := func(prefix, v string) {
		if v != "" {
			lines = append(lines, prefix+vcardEscaper.Replace(v))
		}
	}
	add("ORG:", f.Organization)
	add("TITLE:", f.JobTitle)
	add("TEL;TYPE=WORK,VOICE:", f.Phone)
	add("TEL;TYPE=CELL:", f.Mobile)
	add("EMAIL:", f.Email)
	if f.Website != "" {
		if u, err := NormalizeURL(f.Website); err == nil {
			lines = append(lines, "URL:"+u)
		}
	}
	if f.Street != "" || f.City != "" || f.Zip != "" || f.State != "" || f.Country != "" {
		lines = append(lines, "ADR;TYPE=WORK:;;"+strings.Join([]string{
			vcardEscaper.Replace(f.Street),
			vcardEscaper.Replace(f.City),
			vcardEscaper.Replace(f.State),
			vcardEscaper.Replace(f.Zip),
			vcardEscaper.Replace(f.Country),
		}, ";"))
	}
	add("NOTE:", f.Note)
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\r\n")
}

var vcardEscaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`, `;`, `\;`, "\r\n", `\n`, "\n", `\n`)

// FileForm is the form of the file-backed types: PDF, image and video.
type FileForm struct {
	Kind     Type   `json:"-"`
	File     string `json:"fileId" validate:"required" field:"hidden"`
	FileName string `json:"fileName,omitempty" field:"hidden"`
	FileURL  string `json:"fileUrl,omitempty" field:"-"`
	Title    string `json:"title,omitempty" validate:"max=100"`
}

func (f *FileForm) Type() Type       { return f.Kind }
func (f *FileForm) Validate() error  { return check(f) }
func (f *FileForm) Values() FormData { return values(f) }

// Content is the public URL of the file, once known.
func (f *FileForm) Content() string { return f.FileURL }

func (f *FileForm) FileID() string      { return f.File }
func (f *FileForm) SetFileURL(u string) { f.FileURL = u }

type AppForm struct {
	AppleURL  string `json:"appleUrl,omitempty" validate:"omitempty,httpurl"`
	GoogleURL string `json:"googleUrl,omitempty" validate:"omitempty,httpurl"`
	WebURL    string `json:"webUrl,omitempty" validate:"omitempty,httpurl"`
}

func (f *AppForm) Type() Type       { return App }
func (f *AppForm) Values() FormData { return values(f) }

// Validate requires at least one link.
func (f *AppForm) Validate() error {
	if err := check(f); err != nil {
		return err
	}
	if f.AppleURL == "" && f.GoogleURL == "" && f.WebURL == "" {
		return &ValidationError{Fields: map[string]string{"appleUrl": "is required"}}
	}
	return nil
}

// Content is the first store link set, App Store first.
func (f *AppForm) Content() string {
	for _, u := range []string{f.AppleURL, f.GoogleURL, f.WebURL} {
		if n, err := NormalizeURL(u); err == nil {
			return n
		}
	}
	return ""
}

func phoneNumber(s string) string {
	d := digits(s)
	if strings.HasPrefix(strings.TrimSpace(s), "+") {
		return "+" + d
	}
	return d
}
