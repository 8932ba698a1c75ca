// Package canvas provides drawing surfaces for the field renderer: a raster
// backed by gogpu/gg, an SVG writer, an in-memory recorder and APNG export
// for multi-frame renders.
package canvas
