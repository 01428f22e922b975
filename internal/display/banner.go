package display

import (
	"fmt"
	"io"
)

const banner = `                 ___  _
  __ _ _ __ ___ |__ \(_)_ __   __ _
 / _' | '__/ __|  / /| | '_ \ / _' |
| (_| | | | (__  / /_| | |_) | (_| |
 \__,_|_|  \___||____|_| .__/ \__,_|
                       |_|`

// PrintBanner writes the ASCII art banner and tagline to w.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, TitleStyle.Render(banner))
	fmt.Fprintln(w, SubtitleStyle.Render("  Xcode archive to IPA exporter"))
	fmt.Fprintln(w)
}
