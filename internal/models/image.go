package models

import "encoding/json"

// ImageKind discriminates the two image reference shapes.
type ImageKind int

const (
	// ImageLocal is an asset still on the device, identified by AssetID.
	ImageLocal ImageKind = iota + 1
	// ImageUploaded is an image already stored remotely, identified by URI.
	ImageUploaded
)

func (k ImageKind) String() string {
	switch k {
	case ImageLocal:
		return "local"
	case ImageUploaded:
		return "uploaded"
	}
	return "unknown"
}

// Image is an image reference with its variant resolved once at parse time.
type Image struct {
	Kind    ImageKind
	AssetID string
	URI     string
}

// MarshalJSON writes the image back in the backend shape, so local images
// keep their assetId and uploaded ones carry only the uri.
func (img Image) MarshalJSON() ([]byte, error) {
	if img.Kind == ImageLocal {
		out := map[string]string{"assetId": img.AssetID}
		if img.URI != "" {
			out["uri"] = img.URI
		}
		return json.Marshal(out)
	}
	return json.Marshal(map[string]string{"uri": img.URI})
}
