package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceInfoUnmarshalForms(t *testing.T) {
	tests := []struct {
		name string
		data string
		want ResourceInfo
	}{
		{
			name: "bare address string",
			data: `"wiki://page/1"`,
			want: ResourceInfo{Address: "wiki://page/1"},
		},
		{
			name: "full object",
			data: `{"address":"wiki://page/2","name":"Page two","description":"Second page"}`,
			want: ResourceInfo{Address: "wiki://page/2", Name: "Page two", Description: "Second page"},
		},
		{
			name: "object without description",
			data: `{"address":"wiki://page/3","name":"Page three"}`,
			want: ResourceInfo{Address: "wiki://page/3", Name: "Page three"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ri ResourceInfo
			require.NoError(t, json.Unmarshal([]byte(tt.data), &ri))
			assert.Equal(t, tt.want, ri)
		})
	}
}

func TestDiscoveryUnmarshalMixedResources(t *testing.T) {
	data := `{
		"service": "wiki",
		"instructions": "Browse the wiki",
		"resources": ["wiki://page/1", {"address": "wiki://page/2", "name": "Page two"}]
	}`

	var d Discovery
	require.NoError(t, json.Unmarshal([]byte(data), &d))

	assert.Equal(t, "wiki", d.Service)
	require.Len(t, d.Resources, 2)
	assert.Equal(t, "wiki://page/1", d.Resources[0].Address)
	assert.Equal(t, "Page two", d.Resources[1].Name)
}

func TestBackendInfoListingShape(t *testing.T) {
	valid := true
	mounted, err := json.Marshal(BackendInfo{Name: "email", Kind: KindMounted, Resources: 2})
	require.NoError(t, err)
	proxied, err := json.Marshal(BackendInfo{Name: "wiki", Kind: KindProxied, Validated: &valid})
	require.NoError(t, err)

	// Mounted entries carry no validation verdict, proxied ones no resource
	// count.
	assert.JSONEq(t, `{"name":"email","kind":"mounted","resources":2}`, string(mounted))
	assert.JSONEq(t, `{"name":"wiki","kind":"proxied","validated":true}`, string(proxied))
}
