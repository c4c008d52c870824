// Package configs provides embedded configuration templates for docshub.
//
// Templates are embedded at build time using Go's //go:embed directive
// so they are available in all distributions (source builds and binary
// releases). They seed ~/.docshub/config.yaml and the curated
// repositories.yaml manifest on first run.
package configs

import _ "embed"

// ConfigTemplate is the template for the user configuration file,
// created at ~/.docshub/config.yaml.
//
//go:embed config.example.yaml
var ConfigTemplate string

// ManifestTemplate is the template for the curated repository manifest,
// created at ~/.docshub/repositories.yaml.
//
//go:embed repositories.example.yaml
var ManifestTemplate string
