package outwriter

import (
	"os"

	"github.com/huangsam/eegstudy/internal/contract"
	"golang.org/x/term"
)

// GetMaxTablePathWidth calculates the maximum width for fold paths in table output
// based on terminal width and table configuration.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Paradigm + Held Out + three split counts, with borders and padding
	baseWidth := 24 + 14 + 3*8 + 16

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 60 {
		return 60
	}
	return available
}
