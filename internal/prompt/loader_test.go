package prompt

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	const fallback = "You are a helpful and friendly assistant."

	tests := []struct {
		name    string
		setupFS func(afero.Fs) error
		path    string
		want    string
		wantErr bool
	}{
		{
			name: "no path",
			want: fallback,
		},
		{
			name: "file contents trimmed",
			setupFS: func(fs afero.Fs) error {
				return afero.WriteFile(fs, "/etc/prompt.txt", []byte("  Be brief.\n"), 0644)
			},
			path: "/etc/prompt.txt",
			want: "Be brief.",
		},
		{
			name: "blank file",
			setupFS: func(fs afero.Fs) error {
				return afero.WriteFile(fs, "/blank.txt", []byte("\n\n"), 0644)
			},
			path: "/blank.txt",
			want: fallback,
		},
		{
			name:    "missing file",
			path:    "/missing.txt",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.setupFS != nil {
				require.NoError(t, tt.setupFS(fs))
			}

			got, err := Load(fs, tt.path, fallback)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
