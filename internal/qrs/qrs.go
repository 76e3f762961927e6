// Package qrs converts between builder payloads and saved QR codes.
package qrs

import (
	"context"
	"fmt"

	"github.com/cristianadrielbraun/qrstudio/internal/builder"
	"github.com/cristianadrielbraun/qrstudio/internal/customization"
	"github.com/cristianadrielbraun/qrstudio/internal/forms"
	"github.com/cristianadrielbraun/qrstudio/internal/logger"
	"github.com/cristianadrielbraun/qrstudio/internal/store"
)

// Service saves builder payloads into a store. It implements builder.Saver.
type Service struct {
	store   store.Store
	fileURL func(fileID string) string
	lggr    logger.Logger
}

func NewService(s store.Store, fileURL func(fileID string) string, lggr logger.Logger) *Service {
	return &Service{store: s, fileURL: fileURL, lggr: lggr.Named("QRService")}
}

var _ builder.Saver = (*Service)(nil)

// Save creates the QR code when p.QRID is empty and updates it otherwise.
func (s *Service) Save(ctx context.Context, p builder.SavePayload) (string, error) {
	data, err := s.content(p)
	if err != nil {
		return "", err
	}
	qr := FromPayload(p, data)

	if p.QRID == "" {
		if err := s.store.Create(ctx, qr); err != nil {
			return "", fmt.Errorf("create qr code: %w", err)
		}
		s.lggr.Infow("QR code created", "id", qr.ID, "qrType", qr.QRType)
		return qr.ID, nil
	}

	if err := s.store.Update(ctx, qr); err != nil {
		return "", fmt.Errorf("update qr code %s: %w", p.QRID, err)
	}
	s.lggr.Infow("QR code updated", "id", qr.ID, "qrType", qr.QRType)
	return qr.ID, nil
}

func (s *Service) Get(ctx context.Context, id string) (*store.QR, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]store.QR, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.lggr.Infow("QR code deleted", "id", id)
	return nil
}

// Seed loads the saved QR code id as a builder seed for editing.
func (s *Service) Seed(ctx context.Context, id string) (*builder.Seed, error) {
	qr, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToBuilder(qr), nil
}

// content is what the saved QR code encodes.
func (s *Service) content(p builder.SavePayload) (string, error) {
	f, err := forms.New(p.QRType, p.FormData)
	if err != nil {
		return "", err
	}
	if fb, ok := f.(forms.FileBacked); ok && s.fileURL != nil && fb.FileID() != "" {
		fb.SetFileURL(s.fileURL(fb.FileID()))
	}
	return f.Content(), nil
}

// FromPayload builds the persisted shape of p. data is the encoded content.
func FromPayload(p builder.SavePayload, data string) *store.QR {
	c := p.Customization.Normalize()
	return &store.QR{
		ID:       p.QRID,
		Data:     data,
		QRType:   string(p.QRType),
		Title:    p.Title,
		FormData: p.FormData,
		Styles: store.Styles{
			DotsStyle:         c.Style.DotsStyle,
			ForegroundColor:   c.Style.ForegroundColor,
			BackgroundColor:   c.Style.BackgroundColor,
			CornerSquareStyle: c.Shape.CornerSquareStyle,
			CornerDotStyle:    c.Shape.CornerDotStyle,
		},
		FrameOptions: store.FrameOptions{
			ID:        c.Frame.ID,
			Color:     c.Frame.Color,
			TextColor: c.Frame.TextColor,
			Text:      c.Frame.Text,
		},
		LogoOptions: store.LogoOptions{
			Type:    string(c.Logo.Type),
			ID:      c.Logo.ID,
			IconSrc: c.Logo.IconSrc,
			FileID:  c.Logo.FileID,
		},
		FileID: p.FileID,
	}
}

// Customization rebuilds the customization of a saved QR code.
func Customization(qr *store.QR) customization.Data {
	return customization.Data{
		Frame: customization.Frame{
			ID:        qr.FrameOptions.ID,
			Color:     qr.FrameOptions.Color,
			TextColor: qr.FrameOptions.TextColor,
			Text:      qr.FrameOptions.Text,
		},
		Style: customization.Style{
			DotsStyle:       qr.Styles.DotsStyle,
			ForegroundColor: qr.Styles.ForegroundColor,
			BackgroundColor: qr.Styles.BackgroundColor,
		},
		Shape: customization.Shape{
			CornerSquareStyle: qr.Styles.CornerSquareStyle,
			CornerDotStyle:    qr.Styles.CornerDotStyle,
		},
		Logo: customization.Logo{
			Type:    customization.LogoType(qr.LogoOptions.Type),
			ID:      qr.LogoOptions.ID,
			IconSrc: qr.LogoOptions.IconSrc,
			FileID:  qr.LogoOptions.FileID,
		},
	}.Normalize()
}

// ToBuilder converts a saved QR code into a seed for the builder.
func ToBuilder(qr *store.QR) *builder.Seed {
	return &builder.Seed{
		QRID:          qr.ID,
		QRType:        forms.Type(qr.QRType),
		FormData:      forms.FormData(qr.FormData),
		Customization: Customization(qr),
		Title:         qr.Title,
	}
}
