package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloadRequest struct {
	Reason string `json:"reason"`
}

func TestDecodeJSON(t *testing.T) {
	got, err := DecodeJSON[reloadRequest]([]byte(`{"reason":"crawl finished"}`))
	require.NoError(t, err)
	assert.Equal(t, "crawl finished", got.Reason)

	_, err = DecodeJSON[reloadRequest]([]byte(`{not json`))
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	msgs, err := encode([]Event{
		{Key: "a", Value: reloadRequest{Reason: "x"}},
		{Key: "b", Value: map[string]int{"n": 1}},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte("a"), msgs[0].Key)
	assert.JSONEq(t, `{"reason":"x"}`, string(msgs[0].Value))
	assert.JSONEq(t, `{"n":1}`, string(msgs[1].Value))
}

func TestEncodeRejectsUnencodable(t *testing.T) {
	_, err := encode([]Event{{Key: "bad", Value: make(chan int)}})
	assert.Error(t, err)
}
