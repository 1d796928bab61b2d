package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	allowed := []string{"-d", "-config"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "keeps allowed flag with separate value",
			args: []string{"-d", "dsn", "-x", "other"},
			want: []string{"-d", "dsn"},
		},
		{
			name: "keeps allowed flag with equals value",
			args: []string{"-config=cfg.json", "-x=1"},
			want: []string{"-config=cfg.json"},
		},
		{
			name: "flag followed by another flag keeps no value",
			args: []string{"-d", "-config", "cfg.json"},
			want: []string{"-d", "-config", "cfg.json"},
		},
		{
			name: "nothing allowed",
			args: []string{"-x", "1", "-y=2"},
			want: []string{},
		},
		{
			name: "empty input",
			args: nil,
			want: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterArgs(tc.args, allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("long form", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "a.json"}
		assert.Equal(t, "a.json", JsonConfigFlags())
	})

	t.Run("short form", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "b.json"}
		assert.Equal(t, "b.json", JsonConfigFlags())
	})

	t.Run("absent", func(t *testing.T) {
		os.Args = []string{"testbin"}
		assert.Equal(t, "", JsonConfigFlags())
	})
}
