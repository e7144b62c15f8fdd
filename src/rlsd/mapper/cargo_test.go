package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/rust-lsp/src/rlsd/entity"
	"github.com/uber/rust-lsp/src/rlsd/model"
)

func TestCargoPackageToEntity(t *testing.T) {
	tests := []struct {
		name     string
		targets  []model.CargoTarget
		wantKind entity.LibraryKind
	}{
		{
			name: "library",
			targets: []model.CargoTarget{
				{Name: "cli", Kind: []string{"bin"}},
				{Name: "a", Kind: []string{"rlib", "cdylib"}},
			},
			wantKind: entity.LibraryKindLibrary,
		},
		{
			name: "first library-like target wins",
			targets: []model.CargoTarget{
				{Name: "derive", Kind: []string{"proc-macro"}},
				{Name: "a", Kind: []string{"lib"}},
			},
			wantKind: entity.LibraryKindProcMacro,
		},
		{
			name:     "binary only",
			targets:  []model.CargoTarget{{Name: "cli", Kind: []string{"bin"}}},
			wantKind: entity.LibraryKindNone,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := CargoPackageToEntity(model.CargoPackage{
				Name:         "a",
				ID:           "a 0.1.0 (path+file:///w/a)",
				Version:      "0.1.0",
				ManifestPath: "/w/a/Cargo.toml",
				Targets:      tt.targets,
			})
			assert.Equal(t, "a", p.Name)
			assert.Equal(t, "a 0.1.0 (path+file:///w/a)", p.ID)
			assert.Equal(t, "/w/a", p.ManifestDir)
			assert.Equal(t, tt.wantKind, p.LibraryKind)
			assert.False(t, p.IsMember)
			require.Len(t, p.Targets, len(tt.targets))
			assert.Equal(t, tt.targets[0].Kind, p.Targets[0].Kinds)
		})
	}
}
