package models

import "time"

// AssetShare grants another user visibility of an asset and, optionally,
// download rights. (AssetID, ToUserID) is unique.
type AssetShare struct {
	AssetID     string
	ToUserID    string
	CanDownload bool
	CreatedAt   time.Time
}
