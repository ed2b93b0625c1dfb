// Package config defines the format-agnostic workflow model. Loaders (such as
// the HCL loader) translate their on-disk representation into this model, so
// the rest of the application never depends on a concrete configuration
// syntax.
package config
