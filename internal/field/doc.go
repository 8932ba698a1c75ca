// Package field renders a noise-driven vector field: a grid of short strokes
// whose angle (and optionally hue) is sampled from 3D noise over x, y and
// time.
package field
