package entity

import "time"

// Release identifies an immutable build of the language server binary.
type Release struct {
	ID  int64  `json:"id" zap:"id"`
	Tag string `json:"tag" zap:"tag"`
}

// ReleaseMetadata is the subset of the releases API response used to locate a download.
type ReleaseMetadata struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	TagName     string         `json:"tag_name"`
	PublishedAt time.Time      `json:"published_at"`
	Assets      []ReleaseAsset `json:"assets"`
}

// ReleaseAsset is a downloadable file attached to a release.
type ReleaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Asset returns the asset with the given name.
func (m *ReleaseMetadata) Asset(name string) (ReleaseAsset, bool) {
	for _, a := range m.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return ReleaseAsset{}, false
}
