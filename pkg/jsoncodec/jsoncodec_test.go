package jsoncodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchnotes/catchapi.go/internal/codec"
	"github.com/catchnotes/catchapi.go/pkg/models"
)

func TestCodecs(t *testing.T) {
	t.Parallel()

	codecs := map[string]codec.Codec{
		"std":   New(),
		"sonic": NewSonic(),
	}
	input := []byte(`{"id":42,"text":"hello","server_modified_at":"rev-1","children":"3","x_custom":{"a":1}}`)

	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var n models.Note
			require.NoError(t, c.Unmarshal(input, &n))
			assert.Equal(t, models.ID("42"), n.ID)
			assert.Equal(t, "hello", n.Text)
			assert.Equal(t, models.Int(3), n.Children)
			assert.Contains(t, n.Extra, "x_custom")

			var buf bytes.Buffer
			require.NoError(t, c.NewEncoder(&buf).Encode(map[string]string{"a": "b"}))
			var back map[string]string
			require.NoError(t, c.NewDecoder(&buf).Decode(&back))
			assert.Equal(t, map[string]string{"a": "b"}, back)
		})
	}
}

func TestCodecs_agree(t *testing.T) {
	v := map[string]any{"name": "work", "count": 3}
	a, err := New().Marshal(v)
	require.NoError(t, err)
	b, err := NewSonic().Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestCodecs_envelopeAgree(t *testing.T) {
	input := []byte(`{"count":"2","notes":[
		{"id":1,"text":"a","created_at":"2010-04-22T04:19:16.543Z","x_pinned":true},
		{"id":"2","text":"b","media":[{"id":5,"type":"image","width":"10"}]}]}`)

	var std, snc models.NotesEnvelope
	require.NoError(t, New().Unmarshal(input, &std))
	require.NoError(t, NewSonic().Unmarshal(input, &snc))

	assert.Equal(t, std, snc)
	require.Len(t, snc.Notes, 2)
	assert.Contains(t, snc.Notes[0].Extra, "x_pinned")
	assert.Equal(t, models.Int(10), snc.Notes[1].Media[0].Width)
}
