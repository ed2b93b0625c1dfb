// Package hcl implements the config.Loader interface for HCL workflow files.
// It owns every HCL-specific concern (parsing, decoding, the env eval
// context) and hands the rest of the application a format-agnostic
// config.Model.
package hcl
