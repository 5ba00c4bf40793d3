package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterFactory_Create(t *testing.T) {
	factory := NewFormatterFactory()

	tests := []struct {
		name        string
		format      string
		wantErr     bool
		wantType    interface{}
		wantExt     string
		errContains string
	}{
		{name: "json format", format: "json", wantType: &JSONFormatter{}, wantExt: "json"},
		{name: "yaml format", format: "yaml", wantType: &YAMLFormatter{}, wantExt: "yaml"},
		{name: "table format", format: "table", wantType: &TableFormatter{}, wantExt: "txt"},
		{name: "unknown format", format: "sarif", wantErr: true, errContains: "unknown format: sarif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, err := factory.Create(tt.format)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, formatter)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, formatter)
			assert.Equal(t, tt.wantExt, formatter.Extension())
		})
	}
}

func TestFormatterFactory_SupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "yaml", "table"}, NewFormatterFactory().SupportedFormats())
}
