package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`    _                    _   ___`, "#818cf8"},
	{`   /_\  __ _ ___ _ _  __| |_/ __| __ ___ _ _  ___`, "#a78bfa"},
	{`  / _ \/ _' / -_) ' \|_   _\__ \/ _/ -_) ' \/ -_)`, "#c084fc"},
	{` /_/ \_\__, \___|_||_| |_| |___/\__\___|_||_\___|`, "#e879f9"},
	{`       |___/`, "#f472b6"},
}

// PrintBanner writes the colored banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
