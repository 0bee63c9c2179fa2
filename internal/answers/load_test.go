package answers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		name    string
		content string
		want    map[string]any
	}{
		"json": {
			name:    "answers.json",
			content: `{"enableDevX": true, "databaseProvider": "postgresql", "apiFeatures": ["graphql"]}`,
			want:    map[string]any{"enableDevX": true, "databaseProvider": "postgresql", "apiFeatures": []any{"graphql"}},
		},
		"yaml": {
			name:    "answers.yaml",
			content: "enableDevX: true\ndatabaseProvider: postgresql\napiFeatures: [graphql]\n",
			want:    map[string]any{"enableDevX": true, "databaseProvider": "postgresql", "apiFeatures": []any{"graphql"}},
		},
		"toml": {
			name:    "answers.toml",
			content: "enableDevX = true\ndatabaseProvider = \"postgresql\"\napiFeatures = [\"graphql\"]\n",
			want:    map[string]any{"enableDevX": true, "databaseProvider": "postgresql", "apiFeatures": []any{"graphql"}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ini := filepath.Join(dir, "answers.ini")
	require.NoError(t, os.WriteFile(ini, []byte("a=b"), 0o644))

	_, err := LoadFile(ini)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadFile(bad)
	require.Error(t, err)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "answers.json")
	m := New()
	require.NoError(t, m.Set("enableDevX", true))
	require.NoError(t, m.Set("apiFeatures", []string{"graphql"}))

	require.NoError(t, WriteFile(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"enableDevX": true, "apiFeatures": []any{"graphql"}}, got)
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	kinds := map[string]string{
		"enableDevX":       "boolean",
		"apiFeatures":      "multiselect",
		"databaseProvider": "select",
		"projectName":      "text",
	}
	kindOf := func(key string) string { return kinds[key] }

	tests := map[string]struct {
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		"boolean prompt":          {pairs: []string{"enableDevX=false"}, want: map[string]any{"enableDevX": false}},
		"boolean numeric":         {pairs: []string{"enableDevX=1"}, want: map[string]any{"enableDevX": true}},
		"multiselect":             {pairs: []string{"apiFeatures=graphql, rest,"}, want: map[string]any{"apiFeatures": []any{"graphql", "rest"}}},
		"empty multiselect":       {pairs: []string{"apiFeatures="}, want: map[string]any{"apiFeatures": []any{}}},
		"select stays string":     {pairs: []string{"databaseProvider=sqlite"}, want: map[string]any{"databaseProvider": "sqlite"}},
		"text keeps true literal": {pairs: []string{"projectName=true"}, want: map[string]any{"projectName": "true"}},
		"unknown key bool":        {pairs: []string{"other=true"}, want: map[string]any{"other": true}},
		"unknown key string":      {pairs: []string{"other=1"}, want: map[string]any{"other": "1"}},
		"value with equals":       {pairs: []string{"projectName=a=b"}, want: map[string]any{"projectName": "a=b"}},
		"missing equals":          {pairs: []string{"enableDevX"}, wantErr: true},
		"empty key":               {pairs: []string{"=x"}, wantErr: true},
		"bad boolean":             {pairs: []string{"enableDevX=maybe"}, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAssignments(tt.pairs, kindOf)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
