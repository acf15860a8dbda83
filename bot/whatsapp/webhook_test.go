package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SevaFlow/entity"
)

const textPayloadJSON = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "changes": [{
      "value": {
        "metadata": {"phone_number_id": "pn-42"},
        "messages": [{
          "from": "919900112233",
          "timestamp": "1767072600",
          "type": "text",
          "text": {"body": "complaint"}
        }]
      }
    }]
  }]
}`

func TestParsePayload_Text(t *testing.T) {
	batches, err := ParsePayload([]byte(textPayloadJSON))
	require.NoError(t, err)
	require.Len(t, batches, 1)

	assert.Equal(t, "pn-42", batches[0].PhoneNumberID)
	require.Len(t, batches[0].Events, 1)

	event := batches[0].Events[0]
	assert.Equal(t, entity.EventText, event.Kind)
	assert.Equal(t, "919900112233", event.Phone)
	assert.Equal(t, "complaint", event.Text)
	assert.Equal(t, int64(1767072600), event.Timestamp.Unix())
}

func TestParsePayload_ButtonReply(t *testing.T) {
	payload := `{
	  "entry": [{"changes": [{"value": {
	    "metadata": {"phone_number_id": "pn-42"},
	    "messages": [{
	      "from": "919900112233",
	      "timestamp": "1767072600",
	      "type": "interactive",
	      "interactive": {
	        "type": "button_reply",
	        "button_reply": {"id": "confirm_yes_1", "title": "Yes"}
	      }
	    }]
	  }}]}]
	}`

	batches, err := ParsePayload([]byte(payload))
	require.NoError(t, err)
	require.Len(t, batches, 1)

	event := batches[0].Events[0]
	assert.Equal(t, entity.EventButtonClick, event.Kind)
	assert.Equal(t, "confirm_yes_1", event.Payload)
	assert.Equal(t, "Yes", event.Text)
}

func TestParsePayload_ListReply(t *testing.T) {
	payload := `{
	  "entry": [{"changes": [{"value": {
	    "metadata": {"phone_number_id": "pn-42"},
	    "messages": [{
	      "from": "919900112233",
	      "timestamp": "1767072600",
	      "type": "interactive",
	      "interactive": {
	        "type": "list_reply",
	        "list_reply": {"id": "grv_dept_d-water", "title": "Water Supply"}
	      }
	    }]
	  }}]}]
	}`

	batches, err := ParsePayload([]byte(payload))
	require.NoError(t, err)

	event := batches[0].Events[0]
	assert.Equal(t, entity.EventListSelection, event.Kind)
	assert.Equal(t, "grv_dept_d-water", event.Payload)
}

func TestParsePayload_Image(t *testing.T) {
	payload := `{
	  "entry": [{"changes": [{"value": {
	    "metadata": {"phone_number_id": "pn-42"},
	    "messages": [{
	      "from": "919900112233",
	      "timestamp": "1767072600",
	      "type": "image",
	      "image": {"id": "media-7", "mime_type": "image/jpeg"}
	    }]
	  }}]}]
	}`

	batches, err := ParsePayload([]byte(payload))
	require.NoError(t, err)

	event := batches[0].Events[0]
	assert.Equal(t, entity.EventImage, event.Kind)
	assert.Equal(t, "media-7", event.MediaID)
	assert.Equal(t, "image/jpeg", event.MimeType)
}

func TestParsePayload_StatusUpdatesYieldNothing(t *testing.T) {
	payload := `{
	  "entry": [{"changes": [{"value": {
	    "metadata": {"phone_number_id": "pn-42"},
	    "statuses": [{"id": "wamid.1", "status": "delivered"}]
	  }}]}]
	}`

	batches, err := ParsePayload([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestParsePayload_Garbage(t *testing.T) {
	_, err := ParsePayload([]byte("not json"))
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	secret := "app-secret"
	body := []byte(textPayloadJSON)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	header := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(secret, body, header))
	assert.False(t, VerifySignature(secret, body, "sha256=deadbeef"))
	assert.False(t, VerifySignature("wrong-secret", body, header))
	assert.False(t, VerifySignature(secret, body, ""))
	assert.False(t, VerifySignature("", body, header))
}
