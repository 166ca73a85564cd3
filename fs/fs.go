package appfs

import "embed"

// FS embeds the SQL migrations so the admin CLI and server boot can run them
// without a checkout of the repo next to the binary.
//go:embed migrations
var FS embed.FS
