// Package ui is the terminal presentation layer: splash screen, message
// boxes, the batch build window and a single-choice chooser. Interactive
// pieces run as bubbletea programs when attached to a terminal and fall
// back to plain line output otherwise.
package ui
