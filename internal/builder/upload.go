package builder

// UploadState is the state of the logo upload.
type UploadState string

const (
	UploadIdle      UploadState = "idle"
	UploadUploading UploadState = "uploading"
	UploadComplete  UploadState = "complete"
	UploadFailed    UploadState = "failed"
)

// Upload is the logo upload owned by a builder. Transitions are
// idle -> uploading -> complete | failed, and a new upload may start from any
// state but uploading.
type Upload struct {
	State  UploadState `json:"state"`
	FileID string      `json:"fileId,omitempty"`
	Err    string      `json:"error,omitempty"`
}

func (u Upload) begin() (Upload, error) {
	if u.State == UploadUploading {
		return u, ErrUploadInProgress
	}
	return Upload{State: UploadUploading}, nil
}

func (u Upload) complete(fileID string) (Upload, error) {
	if u.State != UploadUploading {
		return u, ErrNoUpload
	}
	return Upload{State: UploadComplete, FileID: fileID}, nil
}

func (u Upload) fail(err error) (Upload, error) {
	if u.State != UploadUploading {
		return u, ErrNoUpload
	}
	msg := "upload failed"
	if err != nil {
		msg = err.Error()
	}
	return Upload{State: UploadFailed, Err: msg}, nil
}
