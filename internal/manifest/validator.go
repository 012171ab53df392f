package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/shintoio/ama/internal/assets"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// RunnerGroups and RunnerTypes are the enumerations the schema accepts for
// runner.group and runner.type.
var (
	RunnerGroups = []string{"spark"}
	RunnerTypes  = []string{"scala", "sql", "python", "r"}
)

var manifestSchema = mustCompile(assets.ManifestSchema)

func mustCompile(path string) *gojsonschema.Schema {
	schemaBytes, ok := assets.GetSchema(path)
	if !ok {
		panic(fmt.Sprintf("embedded schema %s missing", path))
	}
	// gojsonschema wants JSON; the schema is authored in YAML.
	var schemaData interface{}
	if err := yaml.Unmarshal(schemaBytes, &schemaData); err != nil {
		panic(fmt.Sprintf("embedded schema %s: %v", path, err))
	}
	jsonBytes, err := json.Marshal(schemaData)
	if err != nil {
		panic(fmt.Sprintf("embedded schema %s: %v", path, err))
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		panic(fmt.Sprintf("embedded schema %s: %v", path, err))
	}
	return schema
}

// Validate reports whether doc, a document decoded by yaml.v3 into an
// interface{}, is a valid manifest. It never does I/O and reports no detail
// about which step or field failed.
func Validate(doc interface{}) bool {
	if isEmpty(doc) {
		return false
	}
	result, err := manifestSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		// Documents JSON cannot represent, such as mappings with non-string keys.
		return false
	}
	return result.Valid()
}

func isEmpty(doc interface{}) bool {
	switch v := doc.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(v) == 0
	case string:
		return v == ""
	}
	return false
}
