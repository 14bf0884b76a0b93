// Package models defines server-side data models persisted in the database.
package models

import "time"

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

const (
	AssetStatusUploading AssetStatus = "uploading"
	AssetStatusReady     AssetStatus = "ready"
	AssetStatusCorrupt   AssetStatus = "corrupt"
)

// Asset describes a stored file. The bytes live in object storage under
// StoragePath; this row carries ownership, integrity and version state.
type Asset struct {
	ID       string
	OwnerID  string
	Filename string
	Mime     string
	// Size is the size declared when the upload ticket was issued.
	Size        int64
	StoragePath string
	// SHA256 is the server-computed hex digest, nil until finalize ran.
	SHA256 *string
	Status AssetStatus
	// Version starts at 1 and grows by one on every accepted mutation.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssetPage is one page of a cursor-paginated listing.
type AssetPage struct {
	Assets      []*Asset
	HasNextPage bool
}
