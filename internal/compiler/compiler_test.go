package compiler

import (
	"testing"

	"github.com/specialistvlad/codehost/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project() *config.Project {
	return &config.Project{
		Name:         "hello",
		ActiveTarget: "Release",
		Targets: []*config.Target{
			{Name: "Debug", Build: []string{"make debug"}, Clean: []string{"make clean"}},
			{Name: "Release", Build: []string{"make release"}, Clean: []string{"make clean"}},
		},
	}
}

func TestSelectTargets(t *testing.T) {
	t.Parallel()

	p := project()
	testCases := []struct {
		name    string
		target  string
		want    []string
		wantErr bool
	}{
		{name: "empty selects active", target: "", want: []string{"Release"}},
		{name: "named", target: "Debug", want: []string{"Debug"}},
		{name: "all", target: AllTargets, want: []string{"Debug", "Release"}},
		{name: "unknown", target: "Profile", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := SelectTargets(p, tc.target)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnknownTarget)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, tg := range got {
				names = append(names, tg.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestCommands(t *testing.T) {
	t.Parallel()

	tg := project().Targets[0]
	assert.Equal(t, []string{"make debug"}, Commands(OpBuild, tg))
	assert.Equal(t, []string{"make clean"}, Commands(OpClean, tg))
	assert.Equal(t, []string{"make clean", "make debug"}, Commands(OpRebuild, tg))
	assert.Equal(t, "rebuild", OpRebuild.String())
}
