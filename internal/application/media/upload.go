package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/mathieu6700417/conciergeriecordo/internal/application"
	dommedia "github.com/mathieu6700417/conciergeriecordo/internal/domain/media"
	"github.com/mathieu6700417/conciergeriecordo/internal/observability"
	"github.com/nfnt/resize"

	"go.opentelemetry.io/otel/attribute"
)

const (
	mediaService   = "media-service"
	useCaseUpload  = "media.upload_photo"
	storePeer      = "media_store"
	storeEndpoint  = "upload"
	maxDimension   = 1024
	jpegQuality    = 85
	maxPixels      = 40_000_000
	defaultTimeout = 15 * time.Second
)

type UploadPhotoInput struct {
	// Image is base64, optionally prefixed with "data:image/...;base64,".
	Image string
}

type UploadPhotoResult struct {
	URL    string
	Path   string
	TempID string
}

// UploadPhotoUseCase normalises a customer photo to a bounded JPEG and stores it
// under a temporary owner until the order is created.
type UploadPhotoUseCase struct {
	store   dommedia.Store
	ids     application.IDGenerator
	timeout time.Duration
	inst    *application.Instrument
}

func NewUploadPhotoUseCase(store dommedia.Store, ids application.IDGenerator, timeout time.Duration, tel observability.Observability) *UploadPhotoUseCase {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &UploadPhotoUseCase{
		store:   store,
		ids:     ids,
		timeout: timeout,
		inst:    application.NewInstrument(tel, mediaService, useCaseUpload),
	}
}

func (uc *UploadPhotoUseCase) Execute(ctx context.Context, cmd UploadPhotoInput) (_ *UploadPhotoResult, err error) {
	ctx, run := uc.inst.Begin(ctx, "UploadPhoto")
	defer func() { run.End(err) }()

	raw, err := DecodeDataURL(cmd.Image)
	if err != nil {
		run.Fail("PHOTO_UNDECODABLE")
		return nil, err
	}
	normalized, err := Normalize(raw)
	if err != nil {
		run.Fail("PHOTO_INVALID")
		return nil, err
	}
	run.Span().SetAttributes(
		attribute.Int("media.input_bytes", len(raw)),
		attribute.Int("media.output_bytes", len(normalized)),
	)

	tempID := uc.ids.NewID()
	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	start := time.Now()
	obj, err := uc.store.Upload(callCtx, normalized, dommedia.Owner{TempID: tempID})
	if err != nil {
		run.External(storePeer, storeEndpoint, "error", start)
		run.Fail("STORE_UPLOAD_FAILED")
		return nil, fmt.Errorf("%w: %w", dommedia.ErrStore, err)
	}
	run.External(storePeer, storeEndpoint, "success", start)
	run.With(observability.F("temp_id", tempID), observability.F("path", obj.Path))

	return &UploadPhotoResult{URL: obj.URL, Path: obj.Path, TempID: tempID}, nil
}

// DecodeDataURL accepts raw base64 or a data URL.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, dommedia.ErrEmpty
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, fmt.Errorf("%w: malformed data url", dommedia.ErrInvalidImage)
		}
		s = s[i+1:]
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dommedia.ErrInvalidImage, err)
	}
	return b, nil
}

// Normalize bounds the image to 1024x1024 keeping its aspect ratio, flattens
// transparency onto white and re-encodes as JPEG. Images above 40 megapixels are
// rejected from their header, before any pixel is decoded.
func Normalize(raw []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dommedia.ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", dommedia.ErrInvalidImage, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dommedia.ErrInvalidImage, err)
	}
	img = resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)

	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("media: encode: %w", err)
	}
	return buf.Bytes(), nil
}
