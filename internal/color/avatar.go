// Package color derives display colors for users and posts.
package color

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Palette is offered to clients as post background choices.
var Palette = []string{
	"#F4A261", "#E76F51", "#2A9D8F", "#8AB17D",
	"#E9C46A", "#A8DADC", "#B5838D", "#6D6875",
}

// ForUser returns a stable avatar color for userID. Hue comes from the id's
// hash; saturation and lightness are fixed so every color reads well.
func ForUser(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	hue := float64(h.Sum32() % 360)

	r, g, b := hslToRGB(hue, 0.4, 0.65)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// DefaultBackground picks a palette entry for a post that has none.
func DefaultBackground(postID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(postID))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// Normalize uppercases a "#rgb" or "#rrggbb" color and expands the short form.
func Normalize(hex string) string {
	hex = strings.ToUpper(strings.TrimSpace(hex))
	if len(hex) == 4 && hex[0] == '#' {
		return "#" + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2) + strings.Repeat(hex[3:4], 2)
	}
	return hex
}

// hslToRGB converts h in [0,360) and s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
