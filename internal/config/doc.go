// Package config defines the format-agnostic model of a loaded workflow
// configuration, plus the Loader interface implemented by format-specific
// packages (currently HCL only).
package config
