package elastic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MarkoPoloResearchLab/roomdesk/pkg/booking"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturedRequest struct {
	path     string
	username string
	password string
	body     map[string]any
}

func newCapturingServer(t *testing.T, status int, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		record := capturedRequest{path: request.URL.Path}
		record.username, record.password, _ = request.BasicAuth()
		if request.Body != nil {
			_ = json.NewDecoder(request.Body).Decode(&record.body)
		}
		*captured = append(*captured, record)
		writer.WriteHeader(status)
	}))
}

func reserveEntry(t *testing.T) booking.ActivityEntry {
	t.Helper()
	roomID, err := booking.NewRoomID("room-1")
	require.NoError(t, err)
	return booking.ActivityEntry{
		Action:          booking.ActionReserve,
		RoomID:          roomID,
		Guest:           "Alice",
		RecordedUnixUTC: 1700000000,
	}
}

func TestAppendIndexesDocument(t *testing.T) {
	var captured []capturedRequest
	server := newCapturingServer(t, http.StatusCreated, &captured)
	defer server.Close()

	sink := NewSink(Config{Node: server.URL, Username: "elastic", Password: "password"}, zap.NewNop())
	require.NoError(t, sink.Append(context.Background(), reserveEntry(t)))

	require.Len(t, captured, 1)
	require.Equal(t, "/room-logs/_doc", captured[0].path)
	require.Equal(t, "elastic", captured[0].username)
	require.Equal(t, "password", captured[0].password)
	require.Equal(t, "reserve", captured[0].body["action"])
	require.Equal(t, "room-1", captured[0].body["room_id"])
	require.Equal(t, "Alice", captured[0].body["guest"])
	require.Equal(t, "2023-11-14T22:13:20Z", captured[0].body["timestamp"])
}

func TestAppendConflictDocumentCarriesBothGuests(t *testing.T) {
	var captured []capturedRequest
	server := newCapturingServer(t, http.StatusCreated, &captured)
	defer server.Close()

	roomID, err := booking.NewRoomID("room-1")
	require.NoError(t, err)
	sink := NewSink(Config{Node: server.URL}, zap.NewNop())
	entry := booking.ActivityEntry{
		Action:          booking.ActionConflict,
		RoomID:          roomID,
		AttemptedGuest:  "Carol",
		CurrentGuest:    "Bob",
		RecordedUnixUTC: 1700000000,
	}
	require.NoError(t, sink.Append(context.Background(), entry))

	require.Len(t, captured, 1)
	require.Equal(t, "conflict", captured[0].body["action"])
	require.Equal(t, "Carol", captured[0].body["attempted_guest"])
	require.Equal(t, "Bob", captured[0].body["current_guest"])
}

func TestAppendReportsNodeErrors(t *testing.T) {
	var captured []capturedRequest
	server := newCapturingServer(t, http.StatusInternalServerError, &captured)
	defer server.Close()

	sink := NewSink(Config{Node: server.URL}, zap.NewNop())
	require.Error(t, sink.Append(context.Background(), reserveEntry(t)))
}

func TestRecordActivitySwallowsFailures(t *testing.T) {
	sink := NewSink(Config{Node: "http://127.0.0.1:1", Timeout: 1}, zap.NewNop())
	// must not panic or propagate anything
	sink.RecordActivity(context.Background(), reserveEntry(t))
}

func TestPing(t *testing.T) {
	var captured []capturedRequest
	server := newCapturingServer(t, http.StatusOK, &captured)
	defer server.Close()

	sink := NewSink(Config{Node: server.URL}, zap.NewNop())
	require.NoError(t, sink.Ping(context.Background()))

	down := NewSink(Config{Node: "http://127.0.0.1:1", Timeout: 1}, zap.NewNop())
	require.Error(t, down.Ping(context.Background()))
}
