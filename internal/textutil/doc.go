// Package textutil provides the string helpers shared by naming and variant
// detection: filename sanitizing, whitespace collapsing, length bounding that
// preserves the extension, and accent-insensitive title folding.
package textutil
