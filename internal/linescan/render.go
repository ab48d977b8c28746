package linescan

import "strings"

const (
	DarkChar   = "|"
	LightChar  = "_"
	Terminator = "  "
)

// Render draws one scanline against threshold: DarkChar for samples below it,
// LightChar for samples above it and nothing for samples equal to it, followed
// by Terminator.
func Render(samples []uint16, threshold float64) string {
	var sb strings.Builder
	sb.Grow(len(samples) + len(Terminator))
	for i := range samples {
		value := float64(samples[i])
		if value < threshold {
			sb.WriteString(DarkChar)
		} else if value > threshold {
			sb.WriteString(LightChar)
		}
	}
	sb.WriteString(Terminator)
	return sb.String()
}
