package preview

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	// WebP support for imaging.Open
	_ "golang.org/x/image/webp"
)

// LoadImage decodes an image and renders it into at most width columns
// and height rows.
func LoadImage(path string, width, height int) ([]string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return HalfBlocks(img, width, height), nil
}

// HalfBlocks renders img with one "▀" per cell: the foreground is the
// upper pixel and the background the lower one, so each row of text shows
// two rows of pixels. The image is scaled to fit, keeping its aspect ratio.
func HalfBlocks(img image.Image, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	fitted := imaging.Fit(img, width, height*2, imaging.Box)
	bounds := fitted.Bounds()

	var lines []string
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		var line strings.Builder
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cell := lipgloss.NewStyle().Foreground(hexColor(fitted.At(x, y)))
			if y+1 < bounds.Max.Y {
				cell = cell.Background(hexColor(fitted.At(x, y+1)))
			}
			line.WriteString(cell.Render("▀"))
		}
		lines = append(lines, line.String())
	}
	return lines
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(rgbHex(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
}

func rgbHex(r, g, b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{'#',
		digits[r>>4], digits[r&0xf],
		digits[g>>4], digits[g&0xf],
		digits[b>>4], digits[b&0xf],
	})
}
