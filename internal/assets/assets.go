// Package assets embeds the templates and schemas ama ships with.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_templates
var Templates embed.FS

//go:embed embedded_schemas
var Schemas embed.FS

// Template names, relative to the templates FS.
const (
	ManifestTemplate = "maki.yml.hbs"
	JobTemplate      = "job.yml.hbs"
	SparkTemplate    = "spark.yml.hbs"
)

// ManifestSchema is the path of the maki.yml JSON Schema within the schemas FS.
const ManifestSchema = "maki-v1.yaml"

func GetTemplatesFS() fs.FS {
	if sub, err := fs.Sub(Templates, "embedded_templates"); err == nil {
		return sub
	}
	return Templates
}

func GetSchemasFS() fs.FS {
	if sub, err := fs.Sub(Schemas, "embedded_schemas"); err == nil {
		return sub
	}
	return Schemas
}

// GetTemplate returns the raw template source for name.
func GetTemplate(name string) ([]byte, error) {
	return fs.ReadFile(GetTemplatesFS(), name)
}

// GetSchema returns the embedded schema bytes by relative path (e.g., "maki-v1.yaml").
func GetSchema(relPath string) ([]byte, bool) {
	data, err := fs.ReadFile(GetSchemasFS(), relPath)
	return data, err == nil
}
