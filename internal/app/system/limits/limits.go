// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON request bodies.
	// Every API payload in this app (auth and CRUD alike) is far below
	// this; anything larger is rejected before decoding.
	MaxJSONBodySize = 1 << 20 // 1 MB
)
