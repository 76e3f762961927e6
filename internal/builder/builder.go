// Package builder implements the QR code wizard: type selection, content form
// and customization, followed by a save.
package builder

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/forms"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/preview"
)

// Step is a wizard step.
type Step int

const (
	StepTypeSelect    Step = 1
	StepContentForm   Step = 2
	StepCustomization Step = 3
)

func (s Step) String() string {
	switch s {
	case StepTypeSelect:
		return "type"
	case StepContentForm:
		return "content"
	case StepCustomization:
		return "customization"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// SavePayload is everything a save hands over to persistence.
type SavePayload struct {
	// QRID is set when an existing QR code is being edited.
	QRID          string             `json:"qrId,omitempty"`
	QRType        forms.Type         `json:"qrType"`
	FormData      forms.FormData     `json:"formData"`
	Customization customization.Data `json:"customizationData"`
	Title         string             `json:"title"`
	FileID        string             `json:"fileId,omitempty"`
}

// Saver persists a QR code and returns its id.
type Saver interface {
	Save(ctx context.Context, p SavePayload) (string, error)
}

// Seed prefills a builder, usually from a saved QR code.
type Seed struct {
	QRID          string
	QRType        forms.Type
	FormData      forms.FormData
	Customization customization.Data
	Title         string
}

// State is a snapshot of a builder.
type State struct {
	ID            string             `json:"id"`
	QRID          string             `json:"qrId,omitempty"`
	Step          Step               `json:"step"`
	QRType        forms.Type         `json:"qrType,omitempty"`
	FormData      forms.FormData     `json:"formData"`
	FormValid     bool               `json:"formValid"`
	Title         string             `json:"title"`
	Customization customization.Data `json:"customizationData"`
	Upload        Upload             `json:"upload"`
	Processing    bool               `json:"processing"`
	CanSave       bool               `json:"canSave"`
	Error         string             `json:"error,omitempty"`
	FieldErrors   map[string]string  `json:"fieldErrors,omitempty"`
}

// Builder is one wizard session. It is safe for concurrent use.
type Builder struct {
	id       string
	saver    Saver
	notifier Notifier
	preview  *preview.Previewer
	fileURL  func(fileID string) string
	lggr     logger.Logger

	mu            sync.Mutex
	qrID          string
	step          Step
	qrType        forms.Type
	formData      forms.FormData
	formValid     bool
	contentFileID string
	title         string
	custom        customization.Data
	upload        Upload
	processing    bool
	errMsg        string
	fieldErrs     map[string]string
	closed        bool
	lastUsed      time.Time
}

// Config holds the collaborators of a Builder.
type Config struct {
	Saver    Saver
	Notifier Notifier
	Preview  *preview.Previewer
	// FileURL resolves uploaded content files to their public URL.
	FileURL func(fileID string) string
	Lggr    logger.Logger
}

// New returns a builder on the type step. A non-nil seed prefills it and
// starts on the content step.
func New(id string, cfg Config, seed *Seed) *Builder {
	b := &Builder{
		id:       id,
		saver:    cfg.Saver,
		notifier: cfg.Notifier,
		preview:  cfg.Preview,
		fileURL:  cfg.FileURL,
		lggr:     cfg.Lggr.Named("Builder").With("session", id),
		step:     StepTypeSelect,
		custom:   customization.DefaultData(),
		upload:   Upload{State: UploadIdle},
		lastUsed: time.Now(),
	}
	if b.notifier == nil {
		b.notifier = &Inbox{}
	}

	if seed != nil {
		b.qrID = seed.QRID
		b.qrType = seed.QRType
		b.formData = seed.FormData
		b.formValid = seed.FormData != nil
		b.title = seed.Title
		b.custom = seed.Customization.Normalize()
		if b.qrType != "" {
			b.step = StepContentForm
		}
		if b.formValid {
			if f, err := b.buildForm(seed.FormData); err == nil {
				b.setContent(f)
			}
		}
		if id := b.custom.Logo.FileID; id != "" {
			b.upload = Upload{State: UploadComplete, FileID: id}
		}
	}
	if b.preview != nil {
		b.preview.Update(b.custom)
	}
	return b
}

func (b *Builder) ID() string { return b.id }

// Preview returns the live preview of the customization.
func (b *Builder) Preview() *preview.Previewer { return b.preview }

// SelectType picks the QR type. Switching to another type discards the
// content form but keeps the title.
func (b *Builder) SelectType(t forms.Type) error {
	if _, err := forms.ParseType(string(t)); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.navigableLocked(); err != nil {
		return err
	}
	if t != b.qrType && b.qrType != "" {
		b.formData = nil
		b.formValid = false
		b.contentFileID = ""
		b.setPreviewContent("")
		b.lggr.Debugw("QR type changed, content cleared", "from", b.qrType, "to", t)
	}
	b.qrType = t
	b.clearErrorLocked()
	return nil
}

// Continue advances one step. Leaving the type step needs a type; leaving
// the content step validates values with the form of the selected type and
// commits them. Continue on the last step does nothing.
func (b *Builder) Continue(values forms.FormData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.navigableLocked(); err != nil {
		return err
	}
	if b.upload.State == UploadUploading {
		return ErrUploadInProgress
	}

	switch b.step {
	case StepTypeSelect:
		if b.qrType == "" {
			b.errMsg = ErrNoTypeSelected.Error()
			return ErrNoTypeSelected
		}
		b.clearErrorLocked()
		b.step = StepContentForm
	case StepContentForm:
		f, err := b.buildForm(values)
		if err == nil {
			err = f.Validate()
		}
		if err != nil {
			b.formValid = false
			b.errMsg = err.Error()
			var ve *forms.ValidationError
			if errors.As(err, &ve) {
				b.fieldErrs = ve.Fields
			}
			return err
		}
		b.formData = f.Values()
		b.formValid = true
		b.setContent(f)
		b.clearErrorLocked()
		b.step = StepCustomization
	}
	return nil
}

// Back goes one step back without validation, stopping at the first step.
func (b *Builder) Back() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.navigableLocked(); err != nil {
		return err
	}
	if b.step > StepTypeSelect {
		b.step--
	}
	b.clearErrorLocked()
	return nil
}

// SetTitle sets the display name of the QR code.
func (b *Builder) SetTitle(title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usableLocked(); err != nil {
		return err
	}
	b.title = title
	return nil
}

// SetCustomization replaces the customization. The logo of an upload in
// progress cannot be replaced by another uploaded logo.
func (b *Builder) SetCustomization(data customization.Data) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usableLocked(); err != nil {
		return err
	}
	data = data.Normalize()
	if b.upload.State == UploadUploading && data.Logo.Type == customization.LogoUploaded {
		// the upload owns the uploaded logo until it settles
		data.Logo = b.custom.Logo
	}
	b.custom = data
	b.updatePreviewLocked()
	return nil
}

// SelectFrame switches frames with the catalog defaults applied.
func (b *Builder) SelectFrame(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usableLocked(); err != nil {
		return err
	}
	b.custom = b.custom.SelectFrame(id)
	b.updatePreviewLocked()
	return nil
}

// BeginUpload starts uploading file as the logo. The logo shows the local file
// right away but cannot be saved until CompleteUpload.
func (b *Builder) BeginUpload(file *customization.LocalFile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.usableLocked(); err != nil {
		return err
	}
	next, err := b.upload.begin()
	if err != nil {
		return err
	}
	b.upload = next
	b.custom.Logo = customization.Logo{Type: customization.LogoUploaded, File: file}
	b.updatePreviewLocked()
	return nil
}

// CompleteUpload records the durable file id of the uploaded logo.
func (b *Builder) CompleteUpload(fileID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	next, err := b.upload.complete(fileID)
	if err != nil {
		return err
	}
	b.upload = next
	if b.closed {
		return nil
	}
	// the user may have picked another logo while the file was stored
	if b.custom.Logo.Type != customization.LogoUploaded {
		b.lggr.Debugw("Logo changed during upload, file not attached", "fileId", fileID)
		return nil
	}
	b.custom.Logo.FileID = fileID
	b.custom = b.custom.Normalize()
	b.updatePreviewLocked()
	return nil
}

// FailUpload settles the upload as failed, clears the attempted file and
// tells the user.
func (b *Builder) FailUpload(cause error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	next, err := b.upload.fail(cause)
	if err != nil {
		return err
	}
	b.upload = next
	if b.closed {
		return nil
	}
	b.custom.Logo = customization.Logo{Type: customization.LogoNone}
	b.updatePreviewLocked()
	b.lggr.Warnw("Logo upload failed", "error", cause)
	b.notifier.Notify(Notification{
		Variant:     VariantError,
		Title:       "Upload failed",
		Description: "The logo could not be uploaded. Please try again.",
	})
	return nil
}

// CanSave reports whether Save would be attempted.
func (b *Builder) CanSave() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveBlockedLocked() == nil
}

func (b *Builder) saveBlockedLocked() error {
	switch {
	case b.closed:
		return ErrClosed
	case b.processing:
		return ErrBusy
	case b.qrType == "":
		return ErrNoTypeSelected
	case b.formData == nil:
		return ErrNoFormData
	case b.step != StepCustomization:
		return ErrNotOnLastStep
	case b.upload.State == UploadUploading:
		return ErrUploadInProgress
	case b.custom.Logo.Pending():
		return ErrLogoUploadPending
	}
	return nil
}

// Save hands the wizard's data to the Saver. Precondition failures return
// without side effects. A failed save keeps the wizard as it is so the user
// can retry.
func (b *Builder) Save(ctx context.Context) (string, error) {
	b.mu.Lock()
	if err := b.saveBlockedLocked(); err != nil {
		b.mu.Unlock()
		return "", err
	}
	b.processing = true
	payload := SavePayload{
		QRID:          b.qrID,
		QRType:        b.qrType,
		FormData:      maps.Clone(b.formData),
		Customization: b.custom,
		Title:         b.title,
		FileID:        b.contentFileID,
	}
	b.mu.Unlock()

	id, err := b.saver.Save(ctx, payload)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.processing = false
	if err != nil {
		b.lggr.Errorw("Failed to save QR code", "qrType", payload.QRType, "error", err)
		b.notifier.Notify(Notification{
			Variant:     VariantError,
			Title:       "Could not save your QR code",
			Description: "Something went wrong. Please try again.",
		})
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	created := b.qrID == ""
	b.qrID = id
	title := "QR code updated"
	if created {
		title = "QR code created"
	}
	b.lggr.Infow("QR code saved", "qrId", id, "created", created)
	b.notifier.Notify(Notification{Variant: VariantSuccess, Title: title})
	return id, nil
}

// State returns a snapshot of the builder.
func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		ID:            b.id,
		QRID:          b.qrID,
		Step:          b.step,
		QRType:        b.qrType,
		FormData:      maps.Clone(b.formData),
		FormValid:     b.formValid,
		Title:         b.title,
		Customization: b.custom,
		Upload:        b.upload,
		Processing:    b.processing,
		CanSave:       b.saveBlockedLocked() == nil,
		Error:         b.errMsg,
		FieldErrors:   b.fieldErrs,
	}
}

// Customization returns the current customization.
func (b *Builder) Customization() customization.Data {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.custom
}

// Content is the payload the QR code encodes, or "" before the content form
// was committed.
func (b *Builder) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.formData == nil {
		return ""
	}
	f, err := b.buildForm(b.formData)
	if err != nil {
		return ""
	}
	if fb, ok := f.(forms.FileBacked); ok && b.fileURL != nil {
		fb.SetFileURL(b.fileURL(fb.FileID()))
	}
	return f.Content()
}

// Close releases the preview. Later calls fail with ErrClosed.
func (b *Builder) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	if b.preview != nil {
		b.preview.Close()
	}
}

func (b *Builder) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUsed
}

// usableLocked gates edits. A save in flight works on a copy, so edits are
// allowed meanwhile.
func (b *Builder) usableLocked() error {
	if b.closed {
		return ErrClosed
	}
	b.lastUsed = time.Now()
	return nil
}

// navigableLocked gates step and type changes, which wait for a save in
// flight.
func (b *Builder) navigableLocked() error {
	if err := b.usableLocked(); err != nil {
		return err
	}
	if b.processing {
		return ErrBusy
	}
	return nil
}

func (b *Builder) clearErrorLocked() {
	b.errMsg = ""
	b.fieldErrs = nil
}

func (b *Builder) buildForm(values forms.FormData) (forms.Form, error) {
	if b.qrType == "" {
		return nil, ErrNoTypeSelected
	}
	return forms.New(b.qrType, values)
}

// setContent points the preview at what f encodes.
func (b *Builder) setContent(f forms.Form) {
	b.contentFileID = ""
	if fb, ok := f.(forms.FileBacked); ok {
		b.contentFileID = fb.FileID()
		if b.fileURL != nil && fb.FileID() != "" {
			fb.SetFileURL(b.fileURL(fb.FileID()))
		}
	}
	b.setPreviewContent(f.Content())
}

func (b *Builder) setPreviewContent(content string) {
	if b.preview == nil {
		return
	}
	if content == "" {
		content = b.preview.DefaultContent()
	}
	b.preview.SetContent(content)
}

func (b *Builder) updatePreviewLocked() {
	if b.preview != nil {
		b.preview.Update(b.custom)
	}
}
