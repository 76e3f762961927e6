package builder

import "errors"

var (
	// ErrNoTypeSelected blocks leaving the type step and saving.
	ErrNoTypeSelected = errors.New("select a QR code type to continue")
	// ErrNoFormData blocks saving before the content form was committed.
	ErrNoFormData = errors.New("fill in the QR code content before saving")
	// ErrNotOnLastStep blocks saving from any step but the customization.
	ErrNotOnLastStep = errors.New("finish the previous steps before saving")
	// ErrLogoUploadPending blocks saving while the uploaded logo has no file id.
	ErrLogoUploadPending = errors.New("wait for the logo upload to finish before saving")
	// ErrUploadInProgress blocks navigation and a second upload.
	ErrUploadInProgress = errors.New("an upload is in progress")
	// ErrBusy is returned by navigation and saving while a save is being
	// processed.
	ErrBusy = errors.New("the QR code is being saved")
	// ErrNoUpload is returned when completing or failing an upload that was
	// never started.
	ErrNoUpload = errors.New("no upload in progress")
	// ErrSaveFailed wraps errors of the Saver.
	ErrSaveFailed = errors.New("failed to save the QR code")
	// ErrSessionNotFound is returned by the Manager for unknown ids.
	ErrSessionNotFound = errors.New("builder session not found")
	// ErrClosed is returned by a closed builder.
	ErrClosed = errors.New("builder session is closed")
)

// IsPrecondition reports errors caused by the builder's state rather than by
// its input or its collaborators.
func IsPrecondition(err error) bool {
	for _, target := range []error{ErrNoFormData, ErrNotOnLastStep, ErrLogoUploadPending, ErrUploadInProgress, ErrBusy, ErrNoUpload, ErrClosed} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
