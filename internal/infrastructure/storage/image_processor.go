package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // registra gif
	"image/jpeg"
	_ "image/png" // registra png

	"golang.org/x/image/draw"

	"github.com/jhoicas/usuarios-api/internal/domain"
)

// DefaultMaxPixels límite de píxeles por defecto (5000 x 5000).
const DefaultMaxPixels = 25_000_000

// ImageProcessor normaliza las imágenes de perfil antes de subirlas:
// valida tamaño y formato, reduce a MaxWidth x MaxHeight y re-codifica como JPEG.
// MaxPixels acota el ancho x alto declarado antes de decodificar; 0 no acota.
type ImageProcessor struct {
	MaxBytes  int
	MaxPixels int
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewImageProcessor aplica valores por defecto a los límites no configurados.
func NewImageProcessor(maxBytes, maxWidth, maxHeight, quality int) *ImageProcessor {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	if maxWidth <= 0 {
		maxWidth = 400
	}
	if maxHeight <= 0 {
		maxHeight = 400
	}
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &ImageProcessor{MaxBytes: maxBytes, MaxPixels: DefaultMaxPixels, MaxWidth: maxWidth, MaxHeight: maxHeight, Quality: quality}
}

// Normalize devuelve el payload re-codificado como JPEG.
// Un payload vacío, demasiado grande (en bytes o píxeles) o que no es imagen devuelve ErrImageUpload + ErrInvalidInput.
func (p *ImageProcessor) Normalize(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: %w: imagen vacía", domain.ErrImageUpload, domain.ErrInvalidInput)
	}
	if len(payload) > p.MaxBytes {
		return nil, fmt.Errorf("%w: %w: imagen de %d bytes supera el máximo de %d",
			domain.ErrImageUpload, domain.ErrInvalidInput, len(payload), p.MaxBytes)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: formato no soportado: %w", domain.ErrImageUpload, domain.ErrInvalidInput, err)
	}
	if p.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(p.MaxPixels) {
		return nil, fmt.Errorf("%w: %w: imagen de %dx%d supera el máximo de %d píxeles",
			domain.ErrImageUpload, domain.ErrInvalidInput, cfg.Width, cfg.Height, p.MaxPixels)
	}
	src, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: formato no soportado: %w", domain.ErrImageUpload, domain.ErrInvalidInput, err)
	}

	w, h := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), p.MaxWidth, p.MaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// Fondo blanco para PNG/GIF con transparencia; JPEG no tiene canal alfa.
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("%w: codificar %s como jpeg: %w", domain.ErrImageUpload, format, err)
	}
	return out.Bytes(), nil
}

// fitWithin escala (w, h) para caber en (maxW, maxH) conservando la proporción. Nunca amplía.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	if w*maxH > h*maxW {
		nh := h * maxW / w
		return maxW, max(nh, 1)
	}
	nw := w * maxH / h
	return max(nw, 1), maxH
}
