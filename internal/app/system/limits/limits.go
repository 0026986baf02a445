// internal/app/system/limits/limits.go
package limits

// Request body size limits. Oversized bodies fail to decode and are
// reported as a 400 on the "body" field.
const (
	// MaxJSONBody caps every JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB
)
