package resource

// Asset is a reference to file or text content that travels through resource
// properties. The three concrete shapes are FileAsset, StringAsset and
// RemoteAsset; the shape is fixed at construction time.
type Asset interface {
	isAsset()

	// Validate checks that the asset's single content field is populated.
	Validate() error
}

// Archive is a reference to a collection of assets. The three concrete
// shapes are FileArchive, RemoteArchive and AssetArchive.
type Archive interface {
	isArchive()

	// Validate checks that the archive's single content field is populated.
	Validate() error
}

// FileAsset is an asset backed by a file on the local filesystem.
type FileAsset struct {
	// Path is the path to the file.
	Path string
}

// NewFileAsset creates an asset backed by the file at path.
func NewFileAsset(path string) *FileAsset {
	return &FileAsset{Path: path}
}

func (*FileAsset) isAsset() {}

// Validate implements Asset.
func (a *FileAsset) Validate() error {
	if a.Path == "" {
		return NewValidationError("file asset has no path")
	}
	return nil
}

// StringAsset is an asset backed by in-memory text.
type StringAsset struct {
	// Text is the literal content of the asset.
	Text string
}

// NewStringAsset creates an asset holding the given text.
func NewStringAsset(text string) *StringAsset {
	return &StringAsset{Text: text}
}

func (*StringAsset) isAsset() {}

// Validate implements Asset.
func (a *StringAsset) Validate() error {
	if a.Text == "" {
		return NewValidationError("string asset has no text")
	}
	return nil
}

// RemoteAsset is an asset fetched from a URI.
type RemoteAsset struct {
	// URI is the location the asset content is fetched from.
	URI string
}

// NewRemoteAsset creates an asset fetched from uri.
func NewRemoteAsset(uri string) *RemoteAsset {
	return &RemoteAsset{URI: uri}
}

func (*RemoteAsset) isAsset() {}

// Validate implements Asset.
func (a *RemoteAsset) Validate() error {
	if a.URI == "" {
		return NewValidationError("remote asset has no uri")
	}
	return nil
}

// FileArchive is an archive backed by an archive file on the local
// filesystem.
type FileArchive struct {
	// Path is the path to the archive file.
	Path string
}

// NewFileArchive creates an archive backed by the file at path.
func NewFileArchive(path string) *FileArchive {
	return &FileArchive{Path: path}
}

func (*FileArchive) isArchive() {}

// Validate implements Archive.
func (a *FileArchive) Validate() error {
	if a.Path == "" {
		return NewValidationError("file archive has no path")
	}
	return nil
}

// RemoteArchive is an archive fetched from a URI.
type RemoteArchive struct {
	// URI is the location the archive content is fetched from.
	URI string
}

// NewRemoteArchive creates an archive fetched from uri.
func NewRemoteArchive(uri string) *RemoteArchive {
	return &RemoteArchive{URI: uri}
}

func (*RemoteArchive) isArchive() {}

// Validate implements Archive.
func (a *RemoteArchive) Validate() error {
	if a.URI == "" {
		return NewValidationError("remote archive has no uri")
	}
	return nil
}

// AssetArchive is an archive assembled from named member assets and
// archives.
type AssetArchive struct {
	// Assets maps member names to nested Asset or Archive values.
	Assets map[string]any
}

// NewAssetArchive creates an archive from the given members.
func NewAssetArchive(assets map[string]any) *AssetArchive {
	return &AssetArchive{Assets: assets}
}

func (*AssetArchive) isArchive() {}

// Validate implements Archive. Member values must themselves be assets or
// archives.
func (a *AssetArchive) Validate() error {
	for name, member := range a.Assets {
		switch member.(type) {
		case Asset, Archive:
		default:
			return NewValidationError("asset archive member is neither an asset nor an archive").WithProperty(name)
		}
	}
	return nil
}
