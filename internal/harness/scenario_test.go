package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "one source, one move"
nodes:
  - {ref: S, kind: source, bounds: [2, 2, 8, 5]}
steps:
  - {action: move, at: [4, 4]}
assertions:
  - {type: mode, mode: idle}
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, []int{2, 2, 8, 5}, s.Nodes[0].Bounds)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, "move", s.Steps[0].Action)
	assert.Equal(t, []int{4, 4}, s.Steps[0].At)
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `
description: d
steps: [{background: true}]
assertions: [{type: mode, mode: idle}]
`,
			want: "name is required",
		},
		{
			name: "no steps",
			yaml: `
name: n
description: d
assertions: [{type: mode, mode: idle}]
`,
			want: "steps list is required",
		},
		{
			name: "duplicate ref",
			yaml: `
name: n
description: d
nodes:
  - {ref: A, kind: source, bounds: [0, 0, 1, 1]}
  - {ref: A, kind: source, bounds: [0, 0, 1, 1]}
steps: [{background: true}]
assertions: [{type: mode, mode: idle}]
`,
			want: `duplicate ref "A"`,
		},
		{
			name: "gate without op",
			yaml: `
name: n
description: d
nodes: [{ref: G, kind: gate, bounds: [0, 0, 1, 1]}]
steps: [{background: true}]
assertions: [{type: mode, mode: idle}]
`,
			want: "op is required",
		},
		{
			name: "step with two kinds",
			yaml: `
name: n
description: d
steps: [{background: true, force: true}]
assertions: [{type: mode, mode: idle}]
`,
			want: "exactly one of",
		},
		{
			name: "unknown modifier",
			yaml: `
name: n
description: d
steps: [{key: t, mods: [hyper]}]
assertions: [{type: mode, mode: idle}]
`,
			want: `unknown modifier "hyper"`,
		},
		{
			name: "unknown connection ref",
			yaml: `
name: n
description: d
nodes: [{ref: A, kind: source, bounds: [0, 0, 1, 1]}]
connections: [{target: B, slot: 0, source: A}]
steps: [{background: true}]
assertions: [{type: mode, mode: idle}]
`,
			want: "unknown node ref",
		},
		{
			name: "unknown mode",
			yaml: `
name: n
description: d
steps: [{background: true}]
assertions: [{type: mode, mode: flying}]
`,
			want: `unknown mode "flying"`,
		},
		{
			name: "unknown assertion",
			yaml: `
name: n
description: d
steps: [{background: true}]
assertions: [{type: final_state}]
`,
			want: `unknown assertion type "final_state"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_ResolvesConfigPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	content := minimalScenario + "config: keys.cue\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "keys.cue"), s.Config)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
