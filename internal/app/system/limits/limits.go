// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON API.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for any JSON request body.
	MaxJSONBodySize = 64 << 10 // 64 KB

	// MaxAuthBodySize is the maximum size for register and login bodies.
	MaxAuthBodySize = 4 << 10 // 4 KB
)
