package factory

import (
	"encoding/json"
	"path/filepath"

	"github.com/uber/rust-lsp/src/rlsd/model"
)

// CargoPackage returns a raw package located in root/name with a library target
// followed by targets.
func CargoPackage(root string, name string, targets ...model.CargoTarget) model.CargoPackage {
	dir := filepath.Join(root, name)
	return model.CargoPackage{
		Name:         name,
		ID:           PackageID(name, dir),
		Version:      "0.1.0",
		ManifestPath: filepath.Join(dir, "Cargo.toml"),
		Targets: append([]model.CargoTarget{{
			Name:    name,
			Kind:    []string{"lib"},
			SrcPath: filepath.Join(dir, "src", "lib.rs"),
		}}, targets...),
	}
}

// CargoTarget returns a raw target of the given kind.
func CargoTarget(kind string, name string) model.CargoTarget {
	return model.CargoTarget{
		Name:    name,
		Kind:    []string{kind},
		SrcPath: filepath.Join("src", "bin", name+".rs"),
	}
}

// CargoMetadata returns raw metadata for root where members lists the names of the workspace members.
func CargoMetadata(root string, members []string, packages ...model.CargoPackage) model.CargoMetadata {
	m := model.CargoMetadata{
		Packages:        packages,
		WorkspaceRoot:   root,
		TargetDirectory: filepath.Join(root, "target"),
		Version:         1,
	}
	for _, name := range members {
		id := PackageID(name, filepath.Join(root, name))
		for _, p := range packages {
			if p.Name == name {
				id = p.ID
			}
		}
		m.WorkspaceMembers = append(m.WorkspaceMembers, id)
	}
	return m
}

// CargoMetadataJSON renders metadata the way `cargo metadata` prints it.
func CargoMetadataJSON(m model.CargoMetadata) string {
	b, _ := json.Marshal(m)
	return string(b) + "\n"
}
