// imageprocessor.go - Image preprocessing for better prescription OCR accuracy

package processor

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

const defaultMaxDimension = 2500

// PreprocessImage decodes a photographed prescription, fixes EXIF orientation,
// downscales it to maxDimension on the longest side and applies adaptive
// enhancement. The result is re-encoded in the declared MIME type (PNG stays
// PNG, everything else becomes JPEG).
func PreprocessImage(data []byte, mimeType string, maxDimension int) ([]byte, string, error) {
	if maxDimension <= 0 {
		maxDimension = defaultMaxDimension
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Step 1: Analyze image quality
	qualityScore := analyzeImageQuality(img)

	// Step 2: Resize to optimal size
	img = fitWithin(img, maxDimension)

	// Step 3: Apply adaptive processing based on quality score
	if qualityScore < 50 {
		img = applyAggressiveEnhancement(img)
	} else if qualityScore < 75 {
		img = applyStandardEnhancement(img)
	} else {
		img = applyLightEnhancement(img)
	}

	// Step 4: Final sharpening pass for handwriting strokes
	img = imaging.Sharpen(img, 1.0)

	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		err = imaging.Encode(&buf, img, imaging.PNG)
	default:
		mimeType = "image/jpeg"
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95))
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode processed image: %w", err)
	}

	return buf.Bytes(), mimeType, nil
}

// fitWithin scales img down so neither side exceeds maxDimension
func fitWithin(img image.Image, maxDimension int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxDimension && height <= maxDimension {
		return img
	}
	if width > height {
		return imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
}

// analyzeImageQuality analyzes image and returns quality score (0-100)
func analyzeImageQuality(img image.Image) float64 {
	bounds := img.Bounds()

	var totalBrightness float64
	var minBrightness float64 = 255
	var maxBrightness float64 = 0
	pixelCount := 0

	// Sample pixels (every 10th pixel for performance)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 10 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 10 {
			r, g, b, _ := img.At(x, y).RGBA()
			brightness := (float64(r>>8) + float64(g>>8) + float64(b>>8)) / 3.0

			totalBrightness += brightness
			if brightness < minBrightness {
				minBrightness = brightness
			}
			if brightness > maxBrightness {
				maxBrightness = brightness
			}
			pixelCount++
		}
	}

	if pixelCount == 0 {
		return 0
	}

	avgBrightness := totalBrightness / float64(pixelCount)
	contrast := maxBrightness - minBrightness

	// Ideal: avgBrightness = 128, contrast = 200+
	brightnessScore := 100.0 - math.Abs(avgBrightness-128.0)/1.28
	contrastScore := math.Min(contrast/2.0, 100.0)

	// Weight: 40% brightness, 60% contrast
	return (brightnessScore * 0.4) + (contrastScore * 0.6)
}

// applyLightEnhancement for good quality images
func applyLightEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 2.0)
	result = imaging.AdjustContrast(result, 30)
	result = imaging.Grayscale(result)
	result = imaging.AdjustContrast(result, 20)
	return imaging.AdjustGamma(result, 1.05)
}

// applyStandardEnhancement for medium quality images
func applyStandardEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 3.0)
	result = imaging.AdjustContrast(result, 45)
	result = imaging.AdjustBrightness(result, 15)
	result = imaging.Grayscale(result)
	result = imaging.AdjustContrast(result, 35)
	return imaging.AdjustGamma(result, 1.15)
}

// applyAggressiveEnhancement for dim or washed-out photos
func applyAggressiveEnhancement(img image.Image) image.Image {
	result := imaging.Sharpen(img, 4.0)
	result = imaging.AdjustContrast(result, 60)
	result = imaging.AdjustBrightness(result, 25)
	result = imaging.Grayscale(result)
	result = imaging.AdjustContrast(result, 55)
	result = imaging.AdjustGamma(result, 1.3)

	// blur then re-sharpen removes paper grain without losing pen strokes
	result = imaging.Blur(result, 0.5)
	result = imaging.Sharpen(result, 2.5)

	return imaging.AdjustContrast(result, 20)
}
