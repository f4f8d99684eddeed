package hooks

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	// PreAcquire runs before the download starts; an error aborts the acquisition.
	PreAcquire HookType = "pre-acquire"
	// PostAcquire runs once the asset is fully in place.
	PostAcquire HookType = "post-acquire"
)

// Valid reports whether t is a known hook type.
func (t HookType) Valid() bool {
	return t == PreAcquire || t == PostAcquire
}

// HookContext contains information passed to hooks.
type HookContext struct {
	AssetName     string
	AssetCategory string
	AssetPath     string
	SourceURL     string
	Vars          map[string]interface{}
}
