package wire

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipbridge/clipbridge/internal/message"
)

func pipePair(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	return New(a), New(b)
}

func TestRoundTrip(t *testing.T) {
	client, server := pipePair(t)

	sent := &message.Message{
		Type:     message.TypeStatusResponse,
		Version:  "1.2.3",
		Identity: "user_abc",
		Device:   "Windows",
		Visible:  true,
		Pending:  &message.PendingClip{Text: "hello", RemainingSeconds: 7},
		Counts:   map[string]int64{"Windows": 3, "Android": 1},
	}

	errc := make(chan error, 1)
	go func() { errc <- client.WriteMsg(sent) }()

	got, err := server.ReadMsg()
	require.NoError(t, err)
	require.NoError(t, <-errc)

	assert.Equal(t, sent, got)
}

func TestMultipleMessagesOneConn(t *testing.T) {
	client, server := pipePair(t)

	go func() {
		_ = client.WriteMsg(&message.Message{Type: message.TypeSave})
		_ = client.WriteMsg(&message.Message{Type: message.TypeCancel})
	}()

	first, err := server.ReadMsg()
	require.NoError(t, err)
	assert.Equal(t, message.TypeSave, first.Type)

	second, err := server.ReadMsg()
	require.NoError(t, err)
	assert.Equal(t, message.TypeCancel, second.Type)
}

func TestReadDeadlineExpires(t *testing.T) {
	_, server := pipePair(t)

	server.SetReadDeadline(20 * time.Millisecond)
	_, err := server.ReadMsg()
	require.Error(t, err)

	var nerr net.Error
	require.ErrorAs(t, err, &nerr)
	assert.True(t, nerr.Timeout())
}

func TestClosedPeerReturnsError(t *testing.T) {
	client, server := pipePair(t)

	require.NoError(t, client.Close())
	_, err := server.ReadMsg()
	assert.Error(t, err)
}

func TestEmbeddedNewlineSurvivesFraming(t *testing.T) {
	client, server := pipePair(t)

	// Clip text routinely contains newlines; JSON escaping must keep the
	// frame to a single line.
	sent := &message.Message{
		Type:    message.TypeStatusResponse,
		Pending: &message.PendingClip{Text: "line one\nline two\n", RemainingSeconds: 2},
	}

	go func() { _ = client.WriteMsg(sent) }()

	got, err := server.ReadMsg()
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", got.Pending.Text)
}
