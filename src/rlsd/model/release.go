package model

// InstalledRelease is the persisted record of the installed language server release.
type InstalledRelease struct {
	ID  int64  `json:"id"`
	Tag string `json:"tag"`
}
