// Package cleaner embeds the form page served by the dbcleaner web server.
package cleaner

import "embed"

// WebFS holds web/templates and web/static.
//
//go:embed web
var WebFS embed.FS
