// Package hclconf is the HCL implementation of the config.Loader interface.
// It discovers .hcl files, decodes workflow/job/step blocks and translates
// them into the format-agnostic config model.
package hclconf
