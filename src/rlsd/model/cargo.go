package model

// CargoMetadata is the output of `cargo metadata --format-version 1`.
type CargoMetadata struct {
	Packages         []CargoPackage `json:"packages"`
	WorkspaceMembers []string       `json:"workspace_members"`
	WorkspaceRoot    string         `json:"workspace_root"`
	TargetDirectory  string         `json:"target_directory"`
	Version          int            `json:"version"`
}

// CargoPackage is a package entry of CargoMetadata.
type CargoPackage struct {
	Name         string        `json:"name"`
	ID           string        `json:"id"`
	Version      string        `json:"version"`
	ManifestPath string        `json:"manifest_path"`
	Targets      []CargoTarget `json:"targets"`
}

// CargoTarget is a build target of a CargoPackage.
type CargoTarget struct {
	Name    string   `json:"name"`
	Kind    []string `json:"kind"`
	SrcPath string   `json:"src_path"`
}
