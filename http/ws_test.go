package http

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictSocket(t *testing.T) {
	server := httptest.NewServer(newTestServer(t, &fakeModel{label: 1}, nil))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/predict"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(exampleJSON)))
	var reply socketReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, 200, reply.Status)
	assert.Equal(t, "💞 Couple is compatible!", reply.Message)
	assert.True(t, reply.Celebrate)

	// a malformed frame is answered and the connection stays usable
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"age":`)))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, 400, reply.Status)
	assert.Contains(t, reply.Error, "invalid JSON body")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"attraction":-1}`)))
	reply = socketReply{}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, 400, reply.Status)
	assert.Equal(t, "must be at least 0", reply.Fields["attraction"])
}
