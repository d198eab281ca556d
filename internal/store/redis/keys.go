package redis

const (
	// DefaultKeyPrefix namespaces every key written by linemark.
	DefaultKeyPrefix = "linemark"

	bookmarksSuffix   = ":bookmarks"
	directoriesSuffix = ":directories"
)

// Keys holds the two Redis keys the bookmark state is persisted under.
// Each key holds one JSON array and is overwritten as a whole on save.
type Keys struct {
	Bookmarks   string
	Directories string
}

// NewKeys returns the keys for prefix, falling back to DefaultKeyPrefix.
func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keys{
		Bookmarks:   prefix + bookmarksSuffix,
		Directories: prefix + directoriesSuffix,
	}
}
