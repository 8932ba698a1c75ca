package offline

import (
	"fmt"
	"strings"
)

// CacheName returns the store name for one generation, for example
// "anthozoa-cache-v2".
func CacheName(prefix string, version int) string {
	return fmt.Sprintf("%s-cache-v%d", prefix, version)
}

// GenerationPrefix returns the prefix shared by every generation of an app.
// Only stores with this prefix are candidates for deletion on activate.
func GenerationPrefix(prefix string) string {
	return prefix + "-cache-"
}

// IsStaleGeneration reports whether name belongs to prefix but is not the
// current store.
func IsStaleGeneration(name, prefix, current string) bool {
	return name != current && strings.HasPrefix(name, GenerationPrefix(prefix))
}
