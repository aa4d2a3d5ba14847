package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadConfig(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    *Config
		wantErr bool
	}{
		{
			name: "simple parse",
			path: "fixtures/example.yml",
			want: &Config{
				Optimizer: OptimizerConfig{
					DisablePushdown: true,
				},
				Explain: ExplainConfig{
					WithSchemaInfo: false,
				},
			},
		},
		{
			name: "missing file falls back to defaults",
			path: "fixtures/nonexistent.yml",
			want: &Config{
				Explain: ExplainConfig{
					WithSchemaInfo: true,
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadConfig(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
