// Package render provides format conversion for rendered sky maps.
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). The skyproj PDF sink uses
// ToPDF; PNG output is normally rasterised in-process and ToPNG is kept for
// callers that want librsvg's text rendering.
//
//	svg := skyproj.RenderSVG(canvas)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
package render
