package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	PersonaImageJpegQuality   = 85
	PersonaImageFileExtension = ".jpg"

	defaultImageSide = 256
)

// Processor turns uploaded persona images into stored files. it relies on a
// Store implementation for saving the results.
type Processor struct {
	store    Store
	maxSize  int   // longest side in px, 0 disables resizing
	maxBytes int64 // upload limit, 0 disables the check
}

func NewProcessor(store Store, maxSize int, maxBytes int64) *Processor {
	return &Processor{store: store, maxSize: maxSize, maxBytes: maxBytes}
}

// PublicReference converts a store-relative path into the reference kept on the
// persona record, e.g. "imagenes/x.jpg" -> "storage/imagenes/x.jpg".
func PublicReference(relativePath string) string {
	return path.Join(PublicPrefix, relativePath)
}

// RelativeFromReference is the inverse of PublicReference. ok is false for
// references that do not point into the public storage.
func RelativeFromReference(reference string) (string, bool) {
	rel, found := strings.CutPrefix(reference, PublicPrefix+"/")
	if !found || rel == "" {
		return "", false
	}
	return rel, true
}

// ProcessPersonaImage decodes an upload, applies EXIF orientation, bounds it to
// maxSize and saves it as JPEG. returns the public reference of the saved file.
func (p *Processor) ProcessPersonaImage(fileData io.Reader) (string, error) {
	reader := fileData
	if p.maxBytes > 0 {
		reader = io.LimitReader(fileData, p.maxBytes+1)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded image: %w", err)
	}
	if p.maxBytes > 0 && int64(len(raw)) > p.maxBytes {
		return "", ErrImageTooLarge
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if p.maxSize > 0 {
		img = imaging.Fit(img, p.maxSize, p.maxSize, imaging.Lanczos)
	}

	imageUUID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID for persona image: %w", err)
	}
	targetFilename := imageUUID.String() + PersonaImageFileExtension

	savedRelPath, err := p.saveJPEG(AssetTypePersonaImage, targetFilename, img)
	if err != nil {
		return "", fmt.Errorf("failed to save persona image via store: %w", err)
	}

	log.Printf("processor: Processed and saved persona image to %s", savedRelPath)
	return PublicReference(savedRelPath), nil
}

// RemovePersonaImage deletes a previously stored upload. references outside the
// upload directory (the default image, external URLs) are left alone.
func (p *Processor) RemovePersonaImage(reference string) error {
	rel, ok := RelativeFromReference(reference)
	if !ok || reference == DefaultImageReference() {
		return nil
	}
	return p.store.Delete(rel)
}

// DefaultImageReference is the reference of the placeholder image.
func DefaultImageReference() string {
	return path.Join(PublicPrefix, DefaultImagesSubDir, DefaultImageFilename)
}

// EnsureDefaultImage writes a neutral placeholder for the default reference when
// the storage does not have one yet.
func (p *Processor) EnsureDefaultImage() error {
	rel := path.Join(DefaultImagesSubDir, DefaultImageFilename)
	f, _, err := p.store.Get(rel)
	if err == nil {
		return f.Close()
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check default image: %w", err)
	}

	placeholder := imaging.New(defaultImageSide, defaultImageSide, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	savedRelPath, err := p.saveJPEG(AssetTypeDefaultImage, DefaultImageFilename, placeholder)
	if err != nil {
		return fmt.Errorf("failed to save default image: %w", err)
	}
	log.Printf("processor: Generated default persona image at %s", savedRelPath)
	return nil
}

func (p *Processor) saveJPEG(assetType AssetType, filename string, img image.Image) (string, error) {
	reader, writer := io.Pipe()

	go func() {
		err := imaging.Encode(writer, img, imaging.JPEG, imaging.JPEGQuality(PersonaImageJpegQuality))
		if err != nil {
			log.Printf("processor: Failed to encode %s: %v", filename, err)
			writer.CloseWithError(fmt.Errorf("image encoding failed: %w", err))
			return
		}
		writer.Close()
	}()

	savedRelPath, err := p.store.Save(assetType, "", filename, reader)
	// unblock the encoder if Save bailed out before draining the pipe
	reader.Close()
	if err != nil {
		return "", err
	}
	return savedRelPath, nil
}
