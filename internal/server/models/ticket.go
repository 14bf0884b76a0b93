package models

import "time"

// UploadTicket authorises one pending upload. It is consumed (Used=true)
// exactly once by a finalize that reached a verdict.
type UploadTicket struct {
	AssetID   string
	UserID    string
	Nonce     string
	ExpiresAt time.Time
	Used      bool
}

// Expired reports whether the ticket is past its deadline at now.
func (t *UploadTicket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// UploadGrant is what the caller receives when a ticket is issued.
type UploadGrant struct {
	AssetID     string
	StoragePath string
	UploadURL   string
	ExpiresAt   time.Time
	Nonce       string
}

// DownloadGrant is a short-lived read URL for an asset.
type DownloadGrant struct {
	URL       string
	ExpiresAt time.Time
}
