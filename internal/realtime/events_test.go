package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	envelope, err := ParseEnvelope([]byte(`{"type":"sendMessage","data":{"senderId":"user-a","receiverId":"user-b","text":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventSendMessage, envelope.Type)

	var data SendMessageData
	require.NoError(t, unmarshalData(envelope, &data))
	assert.Equal(t, "user-a", data.SenderId)
	assert.Equal(t, "user-b", data.ReceiverId)
	assert.Equal(t, "hi", data.Text)
}

func TestParseEnvelope_Invalid(t *testing.T) {
	_, err := ParseEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestUnmarshalData_Empty(t *testing.T) {
	envelope := &Envelope{Type: EventAddUser}

	var data AddUserData
	assert.ErrorIs(t, unmarshalData(envelope, &data), ErrEmptyPayload)
}

func TestMarshalEnvelope_Roster(t *testing.T) {
	frame, err := MarshalEnvelope(EventGetUsers, []RosterEntry{
		{UserId: "user-a", SocketId: "sock-1"},
	})
	require.NoError(t, err)

	var decoded struct {
		Type string `json:"type"`
		Data []struct {
			UserId   string `json:"userId"`
			SocketId string `json:"socketId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &decoded))
	assert.Equal(t, EventGetUsers, decoded.Type)
	require.Len(t, decoded.Data, 1)
	assert.Equal(t, "user-a", decoded.Data[0].UserId)
	assert.Equal(t, "sock-1", decoded.Data[0].SocketId)
}

func TestMarshalEnvelope_NoData(t *testing.T) {
	frame, err := MarshalEnvelope(EventHeartbeatAck, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"heartbeat_ack"}`, string(frame))
}
