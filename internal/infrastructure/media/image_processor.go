// Package media provides image processing for page assets
package media

import (
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Thumbnail widths generated for every binary image asset.
var thumbnailWidths = []int{1200, 600, 300}

var svgPattern = regexp.MustCompile(`^data:image/svg\+xml;base64,`)

// ImageProcessor handles asset uploads for a single project's media directory.
type ImageProcessor struct {
	basePath string
}

// NewImageProcessor creates an ImageProcessor rooted at the project media path.
func NewImageProcessor(basePath string) *ImageProcessor {
	return &ImageProcessor{basePath: basePath}
}

// ProcessBase64Image stores a base64 data-URI image upload and returns the
// relative URL path of the stored original. SVG uploads are written verbatim;
// binary formats additionally get WebP thumbnails under images/thumbs.
func (p *ImageProcessor) ProcessBase64Image(data, filename, subdir string) (string, error) {
	if data == "" {
		return "", fmt.Errorf("empty base64 data")
	}

	ext := extractExtension(data)
	if ext == "" {
		return "", fmt.Errorf("unsupported image format")
	}
	fullFilename := fmt.Sprintf("%s.%s", filename, ext)

	targetDir := filepath.Join(p.basePath, subdir)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	if ext == "svg" {
		if _, err := processSVG(data, fullFilename, targetDir); err != nil {
			return "", err
		}
	} else {
		storedPath, err := processBinaryImage(data, fullFilename, targetDir)
		if err != nil {
			return "", err
		}
		if err := p.generateWebPThumbnails(storedPath, filename); err != nil {
			// Thumbnails are best effort; the original is already stored.
			return filepath.ToSlash(filepath.Join("/media", subdir, fullFilename)), nil
		}
	}

	relativePath := filepath.ToSlash(filepath.Join("/media", subdir, fullFilename))
	return relativePath, nil
}

// DeleteImageAndThumbnails removes a stored asset and its WebP thumbnails.
func (p *ImageProcessor) DeleteImageAndThumbnails(imagePath string) error {
	if imagePath == "" {
		return fmt.Errorf("empty image path")
	}

	filename := filepath.Base(imagePath)
	basename := strings.TrimSuffix(filename, filepath.Ext(filename))

	originalPath := filepath.Join(p.basePath, strings.TrimPrefix(imagePath, "/media/"))
	if err := os.Remove(originalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove original image: %w", err)
	}

	thumbsDir := filepath.Join(p.basePath, "images", "thumbs")
	for _, width := range thumbnailWidths {
		thumbPath := filepath.Join(thumbsDir, fmt.Sprintf("%s_%dpx.webp", basename, width))
		if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove thumbnail %s: %w", thumbPath, err)
		}
	}
	return nil
}

// generateWebPThumbnails renders resized WebP variants of a stored original.
func (p *ImageProcessor) generateWebPThumbnails(originalPath, basename string) error {
	src, err := imaging.Open(originalPath)
	if err != nil {
		return fmt.Errorf("failed to open image for thumbnails: %w", err)
	}

	thumbsDir := filepath.Join(p.basePath, "images", "thumbs")
	if err := os.MkdirAll(thumbsDir, 0755); err != nil {
		return fmt.Errorf("failed to create thumbs directory: %w", err)
	}

	for _, width := range thumbnailWidths {
		var resized image.Image = src
		if src.Bounds().Dx() > width {
			resized = imaging.Resize(src, width, 0, imaging.Lanczos)
		}

		thumbPath := filepath.Join(thumbsDir, fmt.Sprintf("%s_%dpx.webp", basename, width))
		out, err := os.Create(thumbPath)
		if err != nil {
			return fmt.Errorf("failed to create thumbnail file: %w", err)
		}
		if err := webp.Encode(out, resized, &webp.Options{Quality: 80}); err != nil {
			out.Close()
			return fmt.Errorf("failed to encode webp thumbnail: %w", err)
		}
		out.Close()
	}
	return nil
}

// processSVG writes an SVG data URI verbatim.
func processSVG(data, filename, targetDir string) (string, error) {
	if !svgPattern.MatchString(data) {
		return "", fmt.Errorf("invalid SVG base64 format")
	}

	decoded, err := base64.StdEncoding.DecodeString(svgPattern.ReplaceAllString(data, ""))
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	fullPath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(fullPath, decoded, 0644); err != nil {
		return "", fmt.Errorf("failed to write SVG file: %w", err)
	}
	return fullPath, nil
}

// processBinaryImage decodes and stores a binary image data URI.
func processBinaryImage(data, filename, targetDir string) (string, error) {
	commaIndex := strings.Index(data, ",")
	if commaIndex == -1 {
		return "", fmt.Errorf("invalid base64 data URI")
	}

	decoded, err := base64.StdEncoding.DecodeString(data[commaIndex+1:])
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	fullPath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(fullPath, decoded, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return fullPath, nil
}

// extractExtension auto-detects the file extension from the data URI MIME type
func extractExtension(data string) string {
	switch {
	case strings.Contains(data, "data:image/svg+xml"):
		return "svg"
	case strings.Contains(data, "data:image/png"):
		return "png"
	case strings.Contains(data, "data:image/jpeg"), strings.Contains(data, "data:image/jpg"):
		return "jpg"
	case strings.Contains(data, "data:image/webp"):
		return "webp"
	case strings.Contains(data, "data:image/x-icon"), strings.Contains(data, "data:image/vnd.microsoft.icon"):
		return "ico"
	}
	return ""
}
