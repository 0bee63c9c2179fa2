package codemod

import "context"

// ModPackageJSONPrisma adds the Prisma CLI scripts and schema location.
func ModPackageJSONPrisma(_ context.Context, path string) error {
	return UpdateManifest(path, func(m *Manifest) error {
		if err := m.SetAll("scripts", []KeyValue{
			{Key: "prisma:generate", Value: "prisma generate"},
			{Key: "prisma:migrate", Value: "prisma migrate dev"},
			{Key: "prisma:studio", Value: "prisma studio"},
		}); err != nil {
			return err
		}
		return m.Set("prisma/schema.prisma", "prisma", "schema")
	})
}

// ModPackageJSONApolloServer switches the package to ES modules and adds
// compile and start scripts for an Apollo Server entry point.
func ModPackageJSONApolloServer(_ context.Context, path string) error {
	return UpdateManifest(path, func(m *Manifest) error {
		if err := m.Set("module", "type"); err != nil {
			return err
		}
		return m.SetAll("scripts", []KeyValue{
			{Key: "compile", Value: "tsc"},
			{Key: "start", Value: "npm run compile && node ./dist/index.js"},
		})
	})
}

// AddDevxScripts adds lint, format and typecheck scripts plus a
// lint-staged configuration.
func AddDevxScripts(_ context.Context, path string) error {
	return UpdateManifest(path, func(m *Manifest) error {
		if err := m.SetAll("scripts", []KeyValue{
			{Key: "lint", Value: "eslint ."},
			{Key: "lint:fix", Value: "eslint . --fix"},
			{Key: "format", Value: "prettier --write ."},
			{Key: "format:check", Value: "prettier --check ."},
			{Key: "typecheck", Value: "tsc --noEmit"},
			{Key: "prepare", Value: "husky"},
		}); err != nil {
			return err
		}
		return m.Set([]string{"eslint --fix", "prettier --write"}, "lint-staged", "*.{js,jsx,ts,tsx}")
	})
}
