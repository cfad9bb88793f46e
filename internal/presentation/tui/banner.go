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
	{"  ____            _ _          ", "#818cf8"},
	{" / ___|  ___ _ __(_) |__   ___ ", "#a78bfa"},
	{" \\___ \\ / __| '__| | '_ \\ / _ \\", "#c084fc"},
	{"  ___) | (__| |  | | |_) |  __/", "#e879f9"},
	{" |____/ \\___|_|  |_|_.__/ \\___|", "#f472b6"},
}

// PrintBanner writes the scribe banner to w. Colors degrade to whatever the
// terminal supports.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
