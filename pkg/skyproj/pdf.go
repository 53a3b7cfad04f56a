package skyproj

import (
	"context"

	"github.com/matzehuels/skyproj/pkg/render"
)

// RenderPDF renders the canvas as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, c *Canvas, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(c, opts...))
}
