package common

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gen2brain/avif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	ImageFormatAvif = "avif"
	ImageFormatBmp  = "bmp"
	ImageFormatJpeg = "jpeg"
	ImageFormatPng  = "png"
	ImageFormatTiff = "tiff"
)

var AllImageFormats = []string{
	ImageFormatAvif,
	ImageFormatBmp,
	ImageFormatJpeg,
	ImageFormatPng,
	ImageFormatTiff,
}

func ConvertImageTo(input io.Reader, output io.Writer, outputFormat string) (string, error) {
	img, _, err := image.Decode(input)
	if err != nil {
		return "", fmt.Errorf("image decoding failed: %s", err)
	}

	var outputExt string
	switch outputFormat {
	case ImageFormatAvif:
		err = avif.Encode(output, img)
		outputExt = ImageFormatAvif
	case ImageFormatBmp:
		err = bmp.Encode(output, img)
		outputExt = ImageFormatBmp
	case ImageFormatJpeg:
		err = jpeg.Encode(output, img, nil)
		outputExt = ImageFormatJpeg
	case ImageFormatPng:
		err = png.Encode(output, img)
		outputExt = ImageFormatPng
	case ImageFormatTiff:
		err = tiff.Encode(output, img, nil)
		outputExt = ImageFormatTiff
	default:
		return "", fmt.Errorf(
			"unknown image format %s, supported formats are %v",
			outputFormat, AllImageFormats,
		)
	}

	if err != nil {
		return "", fmt.Errorf("failed to encode image as %s: %s", outputExt, err)
	}

	return outputExt, nil
}
