// Package viz draws spring-mass scenes in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas with a colour class per cell
//   - [Camera]: world to sub-pixel transform with spring-smoothed zoom
//   - [Scene]: rasterizes a [sim.Snapshot] as grid, zig-zag springs and discs
//   - [Theme]: colour schemes, 5 built in
//
// World coordinates have y pointing up; canvas sub-pixels have y pointing
// down. A terminal cell holds 2x4 sub-pixels, which are close to square
// in most fonts, so the camera uses a single zoom for both axes.
package viz
