// Package pkg holds the skyproj libraries.
//
// The packages form three layers:
//
//  1. Geometry and data: [sphere] (circles on the sky, frame transforms),
//     [partition] (HEALPix cells), [camera] (visit footprints), [opsim]
//     (visits from simulator databases), [metric] (masked values),
//     [almanac] (observatory, sun and moon)
//  2. Drawing: [skyproj] (projections, canvas, axes, SVG/PNG/PDF output) and
//     [plot] (configuration layers, axis registry, decorations, variants)
//  3. Orchestration: [pipeline] (load, plot, render with [cache])
//
// A filled map in a few lines:
//
//	values, _, err := metric.ReadFile("depth.json")
//	...
//	hp, _ := partition.NewHealpix(64)
//	canvas, err := plot.NewHpxmapPlotter().Render(values, hp, plot.Config{
//	    "cmap":  "magma",
//	    "title": "coadd depth",
//	}, nil)
//	...
//	svg := skyproj.RenderSVG(canvas)
package pkg
