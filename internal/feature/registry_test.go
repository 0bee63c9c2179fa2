package feature

import (
	"strings"
	"testing"

	"github.com/stackgen/stackgen/internal/activation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prismaYAML = `
id: prisma
name: Prisma ORM
description: Database access through Prisma
dependsOn: [typescript]
configuration:
  - id: databaseProvider
    type: select
    title: Database provider
    required: true
    defaultValue: postgresql
    options:
      - {label: PostgreSQL, value: postgresql}
      - {label: SQLite, value: sqlite}
stages:
  - name: install
    dependencies:
      - {name: prisma, type: devDependencies}
      - {name: "@prisma/client@^5.0.0", workspace: "{{backendDir}}"}
  - name: schema
    activatedBy:
      not:
        equals: {key: databaseProvider, value: sqlite}
    templates:
      - {source: prisma/schema.prisma, destination: prisma/schema.prisma}
    mods:
      package.json: modPackageJsonPrisma
      apps/api/package.json: [modPackageJsonPrisma, addDevxScripts]
---
id: typescript
name: TypeScript
stages:
  - name: config
    scripts:
      - {src: "npx tsc --init", dir: "."}
`

func TestDecode(t *testing.T) {
	t.Parallel()

	features, err := Decode(strings.NewReader(prismaYAML))
	require.NoError(t, err)
	require.Len(t, features, 2)

	prisma := features[0]
	assert.Equal(t, "prisma", prisma.ID)
	assert.Equal(t, []string{"typescript"}, prisma.DependsOn)
	require.Len(t, prisma.Configuration, 1)
	assert.Equal(t, PromptSelect, prisma.Configuration[0].Type)
	assert.Equal(t, "postgresql", prisma.Configuration[0].DefaultValue)
	assert.True(t, prisma.Configuration[0].HasOption("sqlite"))
	assert.False(t, prisma.Configuration[0].HasOption("mongodb"))

	require.Len(t, prisma.Stages, 2)
	assert.Nil(t, prisma.Stages[0].ActivatedBy.Predicate)
	assert.Equal(t, `not(equals(databaseProvider, "sqlite"))`, prisma.Stages[1].ActivatedBy.String())

	mods := prisma.Stages[1].Mods
	require.Len(t, mods, 2)
	assert.Equal(t, FileMod{Path: "package.json", Codemods: []string{"modPackageJsonPrisma"}}, mods[0])
	assert.Equal(t, FileMod{Path: "apps/api/package.json", Codemods: []string{"modPackageJsonPrisma", "addDevxScripts"}}, mods[1])

	assert.Equal(t, "typescript", features[1].ID)
	assert.Equal(t, Script{Src: "npx tsc --init", Dir: "."}, features[1].Stages[0].Scripts[0])
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("id: x\nstages: []\ndepends_on: [y]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "depends_on")
}

func TestDecode_RejectsUnknownPredicate(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("id: x\nactivatedBy:\n  matches: {key: a, value: b}\nstages: []\n"))
	require.ErrorIs(t, err, activation.ErrUnknownPredicate)
}

func TestDependency_PackageAndVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		dep         Dependency
		wantName    string
		wantVersion string
	}{
		"plain name":            {dep: Dependency{Name: "prisma"}, wantName: "prisma", wantVersion: "latest"},
		"explicit version":      {dep: Dependency{Name: "prisma", Version: "^5"}, wantName: "prisma", wantVersion: "^5"},
		"inline version":        {dep: Dependency{Name: "prisma@5.1.0"}, wantName: "prisma", wantVersion: "5.1.0"},
		"scoped name":           {dep: Dependency{Name: "@prisma/client"}, wantName: "@prisma/client", wantVersion: "latest"},
		"scoped inline version": {dep: Dependency{Name: "@prisma/client@^5"}, wantName: "@prisma/client", wantVersion: "^5"},
		"version field wins":    {dep: Dependency{Name: "@a/b@1", Version: "2"}, wantName: "@a/b", wantVersion: "2"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			gotName, gotVersion := tt.dep.PackageAndVersion()
			assert.Equal(t, tt.wantName, gotName)
			assert.Equal(t, tt.wantVersion, gotVersion)
		})
	}
}

func TestDependency_Section(t *testing.T) {
	t.Parallel()
	assert.Equal(t, SectionDependencies, Dependency{Name: "x"}.Section())
	assert.Equal(t, SectionDevDependencies, Dependency{Name: "x", Type: "devDependencies"}.Section())
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	features, err := Decode(strings.NewReader(prismaYAML))
	require.NoError(t, err)

	r, err := NewRegistry(features...)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"prisma", "typescript"}, r.IDs())
	assert.Equal(t, 1, r.Index("typescript"))
	assert.Equal(t, -1, r.Index("missing"))
	assert.Equal(t, "select", r.PromptKind("databaseProvider"))
	assert.Equal(t, "", r.PromptKind("unknown"))

	f, ok := r.Get("prisma")
	require.True(t, ok)
	assert.Equal(t, "Prisma ORM", f.DisplayName())
	s, ok := f.Stage("schema")
	require.True(t, ok)
	assert.Len(t, s.Templates, 1)
}

func TestNewRegistry_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		features []Feature
		wantErr  error
	}{
		"duplicate feature id": {
			features: []Feature{{ID: "a"}, {ID: "a"}},
			wantErr:  ErrDuplicateFeature,
		},
		"duplicate stage name": {
			features: []Feature{{ID: "a", Stages: []Stage{{Name: "s"}, {Name: "s"}}}},
			wantErr:  ErrDuplicateStage,
		},
		"missing feature id": {
			features: []Feature{{Name: "anonymous"}},
			wantErr:  ErrInvalidDescriptor,
		},
		"bad prompt type": {
			features: []Feature{{ID: "a", Configuration: []Prompt{{ID: "p", Type: "slider", Title: "P"}}}},
			wantErr:  ErrInvalidDescriptor,
		},
		"select without options": {
			features: []Feature{{ID: "a", Configuration: []Prompt{{ID: "p", Type: PromptSelect, Title: "P"}}}},
			wantErr:  ErrInvalidDescriptor,
		},
		"bad dependency type": {
			features: []Feature{{ID: "a", Stages: []Stage{{Name: "s", Dependencies: []Dependency{{Name: "x", Type: "deps"}}}}}},
			wantErr:  ErrInvalidDescriptor,
		},
		"mod with no codemods": {
			features: []Feature{{ID: "a", Stages: []Stage{{Name: "s", Mods: ModList{{Path: "package.json"}}}}}},
			wantErr:  ErrInvalidDescriptor,
		},
		"conflicting prompt types": {
			features: []Feature{
				{ID: "a", Configuration: []Prompt{{ID: "p", Type: PromptBoolean, Title: "P"}}},
				{ID: "b", Configuration: []Prompt{{ID: "p", Type: PromptText, Title: "P"}}},
			},
			wantErr: ErrPromptConflict,
		},
		"featureActive of unknown feature": {
			features: []Feature{{ID: "a", ActivatedBy: activation.Expr{Predicate: activation.FeatureActive("ghost")}}},
			wantErr:  ErrInvalidDescriptor,
		},
		"invalid stage predicate": {
			features: []Feature{{ID: "a", Stages: []Stage{{Name: "s", ActivatedBy: activation.Expr{Predicate: activation.Not(nil)}}}}},
			wantErr:  activation.ErrInvalidPredicate,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRegistry(tt.features...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewRegistry_SharedPromptSameType(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(
		Feature{ID: "a", Configuration: []Prompt{{ID: "enableDevX", Type: PromptBoolean, Title: "First"}}},
		Feature{ID: "b", Configuration: []Prompt{{ID: "enableDevX", Type: PromptBoolean, Title: "Second"}}},
	)
	require.NoError(t, err)
	p, ok := r.Prompt("enableDevX")
	require.True(t, ok)
	assert.Equal(t, "First", p.Title)
}
