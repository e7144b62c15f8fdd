package mapper

import (
	"path/filepath"

	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/model"
)

// CargoPackageToEntity maps a raw cargo metadata package. Membership is decided by the caller.
func CargoPackageToEntity(p model.CargoPackage) entity.Package {
	targets := make([]entity.Target, len(p.Targets))
	kind := entity.LibraryKindNone
	for i, t := range p.Targets {
		targets[i] = entity.Target{
			Name:    t.Name,
			Kinds:   t.Kind,
			SrcPath: t.SrcPath,
		}
		if kind == entity.LibraryKindNone {
			kind = targets[i].LibraryKind()
		}
	}
	return entity.Package{
		Name:         p.Name,
		ID:           p.ID,
		Version:      p.Version,
		ManifestPath: p.ManifestPath,
		ManifestDir:  filepath.Dir(p.ManifestPath),
		Targets:      targets,
		LibraryKind:  kind,
	}
}
