//go:build gojson

package gobind_test

import (
	gobind "github.com/reoring/gobind"
	drv "github.com/reoring/gobind/source/gojson"
)

func init() {
	gobind.SetJSONDriver(drv.Driver())
}
