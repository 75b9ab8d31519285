package config

import _ "embed"

// schemaDocument is the JSON Schema every loaded config document must
// satisfy before unmarshalling.
//
//go:embed schema.json
var schemaDocument []byte
