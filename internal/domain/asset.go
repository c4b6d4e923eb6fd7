package domain

// AudioAsset is a source recording plus the derived facts the pipeline needs.
// The cover image stays owned by the source file; extraction copies it into
// each chapter output, never moves it.
type AudioAsset struct {
	// Path is the absolute location of the source file.
	Path string

	// RelPath is the path relative to the input root. Output and archive
	// directories mirror it.
	RelPath string

	// Duration is the total length in seconds.
	Duration float64

	// Format is the container format name, e.g. "mp3" or "mov,mp4,m4a".
	Format string

	// Tags carries the source container tags worth preserving on outputs.
	Tags AssetTags

	// HasCover reports whether the container embeds cover art.
	HasCover bool
}

// AssetTags is the subset of container tags copied onto chapter outputs.
type AssetTags struct {
	Title  string
	Album  string
	Artist string
}
