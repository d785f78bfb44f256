package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Provider turns an image into plain text.
type Provider interface {
	ExtractText(ctx context.Context, mimeType string, data []byte) (string, error)
}

// ImageReader is satisfied by the Gemini client.
type ImageReader interface {
	ReadImage(ctx context.Context, mimeType string, data []byte) (string, error)
}

// GeminiProvider reads documents with a multimodal model.
type GeminiProvider struct {
	Reader ImageReader
}

func NewGeminiProvider(reader ImageReader) *GeminiProvider {
	return &GeminiProvider{Reader: reader}
}

func (p *GeminiProvider) ExtractText(ctx context.Context, mimeType string, data []byte) (string, error) {
	if p.Reader == nil {
		return "", fmt.Errorf("ocr provider not configured")
	}
	if !IsImage(mimeType) {
		return "", nil
	}
	text, err := p.Reader.ReadImage(ctx, mimeType, data)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return text, nil
}

// IsImage reports whether OCR can run on the content type.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

var (
	amountRe = regexp.MustCompile(`\$\s?([0-9]{1,3}(,[0-9]{3})*(\.[0-9]{2})?)`)
	dateRe   = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)
	cedulaRe = regexp.MustCompile(`\b\d{7,8}\b`)
)

// ExtractAmount returns the largest peso amount in text, or 0.
func ExtractAmount(text string) float64 {
	var best float64
	for _, m := range amountRe.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil && v > best {
			best = v
		}
	}
	return best
}

// ExtractDate returns the first dd/mm/yyyy-like date in text.
func ExtractDate(text string) string {
	return dateRe.FindString(text)
}

// ExtractCedulas returns every 7 or 8 digit number, the format of a professional license.
func ExtractCedulas(text string) []string {
	return cedulaRe.FindAllString(text, -1)
}

// MatchesCedula reports whether text contains licenseNumber as a cedula.
func MatchesCedula(text, licenseNumber string) bool {
	licenseNumber = strings.TrimSpace(licenseNumber)
	if licenseNumber == "" {
		return false
	}
	for _, c := range ExtractCedulas(text) {
		if c == licenseNumber {
			return true
		}
	}
	return false
}
