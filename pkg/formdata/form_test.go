package formdata

import (
	"net/url"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeForm(t *testing.T) {
	t.Parallel()

	body := EncodeForm(FromMap(map[string]string{"text": "a&b=c"}))
	assert.Equal(t, "text=a%26b%3Dc", body)

	decoded, err := url.ParseQuery(body)
	require.NoError(t, err)
	assert.Equal(t, "a&b=c", decoded.Get("text"))
}

func TestEncodeForm_roundtrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	roundtrips := func(fields map[string]string) bool {
		decoded, err := url.ParseQuery(EncodeForm(FromMap(fields)))
		if err != nil || len(decoded) != len(fields) {
			return false
		}
		for k, v := range fields {
			if got, ok := decoded[k]; !ok || len(got) != 1 || got[0] != v {
				return false
			}
		}
		return true
	}

	properties.Property("arbitrary strings survive encoding", prop.ForAll(
		roundtrips,
		gen.MapOf(gen.AnyString(), gen.AnyString()),
	))

	properties.Property("reserved characters survive encoding", prop.ForAll(
		roundtrips,
		gen.MapOf(
			gen.RegexMatch(`[a-z:/?#@!$&'()*+,;=% \[\]]{1,12}`),
			gen.RegexMatch(`[a-z:/?#@!$&'()*+,;=% \[\]]{0,24}`),
		),
	))

	properties.TestingRun(t)
}

func TestAppendQuery(t *testing.T) {
	t.Parallel()

	values := url.Values{"offset": {"0"}}

	testcases := []struct {
		path string
		want string
	}{
		{path: "/v2/notes.json", want: "/v2/notes.json?offset=0"},
		{path: "/v2/notes.json?full=true", want: "/v2/notes.json?full=true&offset=0"},
		{path: "/v2/notes.json?", want: "/v2/notes.json?offset=0"},
	}

	for _, tc := range testcases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.want, AppendQuery(tc.path, values))
		})
	}

	assert.Equal(t, "/v2/tags.json", AppendQuery("/v2/tags.json", nil))
}
