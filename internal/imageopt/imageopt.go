// Package imageopt shrinks site images: raster formats are decoded,
// optionally down-scaled and re-encoded, SVG is minified. Output that is
// not smaller than the input is discarded unless the image was scaled.
package imageopt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Sentinel errors for image optimization.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrDecode            = errors.New("decoding image")
	ErrEncode            = errors.New("encoding image")
)

// Default settings.
const (
	DefaultJPEGQuality = 80
	minJPEGQuality     = 1
	maxJPEGQuality     = 100
)

// Format identifies how a file is processed.
type Format string

// Supported formats.
const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatSVG  Format = "svg"
)

var formatsByExt = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".webp": FormatWebP,
	".svg":  FormatSVG,
}

// SVGMinifier minifies SVG markup.
type SVGMinifier interface {
	Bytes(mediaType string, b []byte) ([]byte, error)
}

// Options controls raster processing.
type Options struct {
	// MaxWidth down-scales wider images, keeping the aspect ratio. 0 disables.
	MaxWidth int
	// JPEGQuality is the encoder quality, 1-100.
	JPEGQuality int
}

// DefaultOptions returns options that re-encode without resizing.
func DefaultOptions() Options {
	return Options{JPEGQuality: DefaultJPEGQuality}
}

// Result describes one optimized image.
type Result struct {
	Format    Format
	Width     int // 0 for SVG
	Height    int // 0 for SVG
	InSize    int
	Data      []byte // bytes to write; the original when optimizing did not help
	Optimized bool   // Data differs from the input
	Scaled    bool   // the image was down-scaled to MaxWidth
}

// Optimizer processes images. Safe for concurrent use.
type Optimizer struct {
	opts Options
	svg  SVGMinifier
}

// New creates an Optimizer. svg may be nil, in which case SVG files pass
// through unchanged.
func New(opts Options, svg SVGMinifier) *Optimizer {
	if opts.JPEGQuality < minJPEGQuality || opts.JPEGQuality > maxJPEGQuality {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	if opts.MaxWidth < 0 {
		opts.MaxWidth = 0
	}
	return &Optimizer{opts: opts, svg: svg}
}

// FormatOf returns the format for a file name based on its extension.
func FormatOf(name string) (Format, bool) {
	f, ok := formatsByExt[strings.ToLower(path.Ext(name))]
	return f, ok
}

// Optimize processes data read from the file name.
func (o *Optimizer) Optimize(name string, data []byte) (Result, error) {
	format, ok := FormatOf(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	res := Result{Format: format, InSize: len(data), Data: data}

	var (
		out []byte
		err error
	)
	switch format {
	case FormatSVG:
		out, err = o.optimizeSVG(data)
	case FormatWebP:
		// No pure-Go WebP encoder; report dimensions and keep the bytes.
		cfg, cerr := webp.DecodeConfig(bytes.NewReader(data))
		if cerr != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", ErrDecode, name, cerr)
		}
		res.Width, res.Height = cfg.Width, cfg.Height
		return res, nil
	case FormatGIF:
		out, res.Width, res.Height, err = o.optimizeGIF(data)
	default:
		out, res.Width, res.Height, res.Scaled, err = o.optimizeRaster(format, data)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", name, err)
	}

	// A scaled image is kept even when larger: its dimensions changed.
	if out != nil && (res.Scaled || len(out) < len(data)) {
		res.Data = out
		res.Optimized = true
	}
	return res, nil
}

func (o *Optimizer) optimizeSVG(data []byte) ([]byte, error) {
	if o.svg == nil {
		return nil, nil
	}
	out, err := o.svg.Bytes("image/svg+xml", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return out, nil
}

func (o *Optimizer) optimizeRaster(format Format, data []byte) ([]byte, int, int, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, false, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	scaled, ok := o.scale(img)
	if ok {
		img = scaled
	}
	b := img.Bounds()

	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: o.opts.JPEGQuality})
	default:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	}
	if err != nil {
		return nil, 0, 0, false, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), b.Dx(), b.Dy(), ok, nil
}

// optimizeGIF re-encodes every frame so animations survive. Frames are not
// scaled because their offsets and disposal are relative to the canvas.
func (o *Optimizer) optimizeGIF(data []byte) ([]byte, int, int, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), g.Config.Width, g.Config.Height, nil
}

// scale down-scales img to MaxWidth with CatmullRom. It reports false when
// the image is already narrow enough.
func (o *Optimizer) scale(img image.Image) (image.Image, bool) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if o.opts.MaxWidth == 0 || w <= o.opts.MaxWidth {
		return img, false
	}

	newH := max(h*o.opts.MaxWidth/w, 1)
	dst := image.NewRGBA(image.Rect(0, 0, o.opts.MaxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, true
}
