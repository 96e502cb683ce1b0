package epub

import (
	"fmt"
	"html"
	"strings"
)

// placeholderCover renders a simple SVG cover carrying the work title.
func placeholderCover(title string) []byte {
	safe := html.EscapeString(strings.TrimSpace(title))
	if safe == "" {
		safe = defaultTitle
	}
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="1200" height="1600" viewBox="0 0 1200 1600">
<rect x="0" y="0" width="1200" height="1600" fill="#f5f2ea" />
<rect x="90" y="90" width="1020" height="1420" fill="#ffffff" stroke="#d7d0c2" stroke-width="6" />
<line x1="180" y1="350" x2="1020" y2="350" stroke="#99907e" stroke-width="3" />
<text x="600" y="760" text-anchor="middle" font-size="72" fill="#2b2b2b" font-family="serif">%s</text>
</svg>`, safe)
	return []byte(svg)
}
