package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Models(t *testing.T) {
	srv := httptest.NewServer(New(&fakeRelay{}, Options{}).Handler())
	defer srv.Close()

	models, err := NewClient(srv.URL+"/", nil).Models(context.Background())

	require.NoError(t, err)
	require.Len(t, models, 3)
	assert.Equal(t, "microsoft/phi-2", models[1].ID)
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream proxy failure", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).Chat(context.Background(), nil)

	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)
	assert.Equal(t, "Bad Gateway", re.Body.Error)
	assert.Equal(t, "upstream proxy failure", re.Body.Message)
	assert.Equal(t, "relay: status 502: Bad Gateway: upstream proxy failure", re.Error())
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Chat(context.Background(), nil)
	assert.ErrorContains(t, err, "relay:")
}
