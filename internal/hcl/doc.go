// Package hcl is the HCL implementation of config.Loader and config.Saver.
// It decodes files into HCL-specific schema structs with gohcl and then
// translates them into the format-agnostic models of internal/config.
package hcl
