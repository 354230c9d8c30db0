// media/types.go
package media

import "errors"

type AssetType string

const (
	AssetTypePersonaImage AssetType = "persona_image"
	AssetTypeDefaultImage AssetType = "default_image"
)

const (
	// PublicPrefix is the URL segment public assets are served under; stored
	// references are PublicPrefix + "/" + path relative to the storage root.
	PublicPrefix = "storage"

	DefaultImagesSubDir  = "images"
	DefaultImageFilename = "default.jpg"
)

var (
	ErrInvalidImage  = errors.New("uploaded file is not a decodable image")
	ErrImageTooLarge = errors.New("uploaded image exceeds the size limit")
	ErrAccessDenied  = errors.New("access denied")
)
