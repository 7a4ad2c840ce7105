package server

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/docflow/docflow/job"
)

func TestJobStreamPushesTerminalUpdate(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})

	wsURL := "ws" + strings.TrimPrefix(env.ts.URL, "http") + "/api/jobs/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	id := env.submitDocument(t, "watched.pdf", []byte("scanned contract"))

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))

		var rec job.Record
		require.NoError(t, conn.ReadJSON(&rec), "expected a job update before the deadline")
		if rec.ID == id && rec.Status == job.StatusCompleted {
			return
		}
	}
}
