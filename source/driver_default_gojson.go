// Package source installs goccy/go-json as the process-wide JSON driver when
// imported for side effects:
//
//	import _ "github.com/reoring/gobind/source"
package source

import (
	gobind "github.com/reoring/gobind"
	drvgojson "github.com/reoring/gobind/source/gojson"
)

// init in a separate package to avoid import cycle in root.
func init() { gobind.SetJSONDriver(drvgojson.Driver()) }
