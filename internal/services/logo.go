package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"scoreboard/internal/structures"
	"strings"
)

const (
	DefaultLogoMaxBytes = 2 << 20

	svgMime = "image/svg+xml"
)

var (
	ErrLogoTooLarge = errors.New("logo exceeds size limit")
	ErrNotAnImage   = errors.New("logo is not a supported image")
)

// LogoConverterInterface turns an uploaded image into a self-contained data URI.
type LogoConverterInterface interface {
	Convert(ctx context.Context, r io.Reader) (string, error)
}

type DataURIConverter struct {
	maxBytes int64
}

func (c *DataURIConverter) Convert(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading logo: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if int64(len(data)) > c.maxBytes {
		return "", ErrLogoTooLarge
	}
	if len(data) == 0 {
		return "", ErrNotAnImage
	}

	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "text/") && isSVG(data) {
		mime = svgMime
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotAnImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// isSVG reports whether the document's root element is <svg>. Content
// sniffing only sees SVG as generic XML or text.
func isSVG(data []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return false
		}
		if el, ok := tok.(xml.StartElement); ok {
			return el.Name.Local == "svg"
		}
	}
}

func NewLogoConverter(conf *structures.Config) LogoConverterInterface {
	maxBytes := conf.Logo.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultLogoMaxBytes
	}
	return &DataURIConverter{maxBytes: maxBytes}
}
