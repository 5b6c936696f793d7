package command

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		params     map[string]any
		wantMethod string
		wantPath   string
		wantBody   map[string]any
	}{
		{
			name:       "no placeholders",
			id:         NewSession,
			params:     map[string]any{"capabilities": map[string]any{}},
			wantMethod: http.MethodPost,
			wantPath:   "/session",
			wantBody:   map[string]any{"capabilities": map[string]any{}},
		},
		{
			name:       "session id moved to path",
			id:         Get,
			params:     map[string]any{"sessionId": "abc", "url": "https://example.com"},
			wantMethod: http.MethodPost,
			wantPath:   "/session/abc/url",
			wantBody:   map[string]any{"url": "https://example.com"},
		},
		{
			name:       "multiple placeholders",
			id:         GetElementAttribute,
			params:     map[string]any{"sessionId": "abc", "id": "el-1", "name": "href"},
			wantMethod: http.MethodGet,
			wantPath:   "/session/abc/element/el-1/attribute/href",
			wantBody:   map[string]any{},
		},
		{
			name:       "placeholder values are escaped",
			id:         GetCookie,
			params:     map[string]any{"sessionId": "abc", "name": "a b/c"},
			wantMethod: http.MethodGet,
			wantPath:   "/session/abc/cookie/a%20b%2Fc",
			wantBody:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Base().Resolve(tt.id, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.wantPath, got.Path)
			assert.Equal(t, tt.wantBody, got.Body)
		})
	}
}

func TestResolveDoesNotMutateParams(t *testing.T) {
	params := map[string]any{"sessionId": "abc", "id": "el-1"}
	_, err := Base().Resolve(ClickElement, params)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"sessionId": "abc", "id": "el-1"}, params)
}

func TestResolveErrors(t *testing.T) {
	_, err := Base().Resolve("noSuchCommand", nil)
	assert.ErrorIs(t, err, ErrUnknown)

	_, err = Base().Resolve(ClickElement, map[string]any{"sessionId": "abc"})
	assert.ErrorIs(t, err, ErrMissingParameter)

	_, err = Base().Resolve(ClickElement, map[string]any{"sessionId": "abc", "id": nil})
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestWithLeavesBaseUntouched(t *testing.T) {
	extended := Base().With(map[string]Command{
		"launchApp": {http.MethodPost, "/session/{sessionId}/chromium/launch_app"},
		GetTitle:    {http.MethodGet, "/session/{sessionId}/custom_title"},
	})

	_, ok := Base().Lookup("launchApp")
	assert.False(t, ok)
	cmd, _ := Base().Lookup(GetTitle)
	assert.Equal(t, "/session/{sessionId}/title", cmd.Path)

	cmd, ok = extended.Lookup("launchApp")
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, cmd.Method)
	cmd, _ = extended.Lookup(GetTitle)
	assert.Equal(t, "/session/{sessionId}/custom_title", cmd.Path)
	assert.Equal(t, Base().Len()+1, extended.Len())
}

func TestPlaceholders(t *testing.T) {
	cmd, ok := Base().Lookup(GetElementValueOfCSSProperty)
	require.True(t, ok)
	assert.Equal(t, []string{"sessionId", "id", "propertyName"}, cmd.Placeholders())

	cmd, _ = Base().Lookup(Status)
	assert.Empty(t, cmd.Placeholders())
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	assert.Zero(t, c.Len())
	assert.Nil(t, c.IDs())
	_, ok := c.Lookup(Get)
	assert.False(t, ok)
	assert.Equal(t, 1, c.With(map[string]Command{"x": {http.MethodGet, "/x"}}).Len())
}
