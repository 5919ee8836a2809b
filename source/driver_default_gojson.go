// Package source selects go-json as the default JSON driver when imported.
package source

import (
	keysync "github.com/reoring/keysync"
	drvgojson "github.com/reoring/keysync/source/gojson"
)

// init in a separate package to avoid import cycle in root. This sets go-json as default driver.
func init() { keysync.SetJSONDriver(drvgojson.Driver()) }
