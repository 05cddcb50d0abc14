package formdata

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_Encode_wireFormat(t *testing.T) {
	t.Parallel()

	body, contentType := NewEncoder().WithBoundary("XyZ").Encode([]Part{
		Field("note_id", "42"),
		File("data", "logo.png", []byte{0x89, 'P', 'N', 'G'}),
	})

	want := "--XyZ\r\n" +
		"Content-Disposition: form-data; name=\"note_id\"\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"\r\n" +
		"42\r\n" +
		"--XyZ\r\n" +
		"Content-Disposition: form-data; name=\"data\"; filename=\"logo.png\"\r\n" +
		"Content-Type: image/png\r\n" +
		"\r\n" +
		"\x89PNG\r\n" +
		"--XyZ--\r\n"

	assert.Equal(t, want, string(body))
	assert.Equal(t, "multipart/form-data; boundary=XyZ", contentType)
}

func TestEncode_defaultBoundary(t *testing.T) {
	t.Parallel()

	body, contentType := Encode()
	assert.Equal(t, "multipart/form-data; boundary=----------ThIs_Is_tHe_bouNdaRY_$", contentType)
	assert.Equal(t, "------------ThIs_Is_tHe_bouNdaRY_$--\r\n", string(body))
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	testcases := map[string]string{
		"photo.png":   "image/png",
		"photo.JPG":   "image/jpeg",
		"archive.zzz": "application/octet-stream",
		"README":      "application/octet-stream",
		"":            "application/octet-stream",
	}

	for filename, want := range testcases {
		assert.Equal(t, want, ContentTypeFor(filename), filename)
	}
}

func parseMultipart(t *testing.T, body []byte, contentType string) []Part {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])

	var parts []Part
	for {
		p, err := reader.NextPart()
		if err == io.EOF {
			return parts
		}
		require.NoError(t, err)

		value, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, Part{Name: p.FormName(), Filename: p.FileName(), Value: value})
	}
}

func TestEncoder_Encode_parsesBack(t *testing.T) {
	t.Parallel()

	parts := []Part{
		Field("text", `quoted "name" and a back\slash`),
		File("image", "a \"b\".jpg", []byte("\r\n--not-a-boundary\r\n")),
	}

	body, contentType := Encode(parts...)
	got := parseMultipart(t, body, contentType)
	require.Len(t, got, 2)
	assert.Equal(t, parts[0].Name, got[0].Name)
	assert.Equal(t, parts[0].Value, got[0].Value)
	assert.Equal(t, parts[1].Filename, got[1].Filename)
	assert.Equal(t, parts[1].Value, got[1].Value)
}

func TestEncoder_Encode_roundtrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genPart := gopter.CombineGens(
		gen.Identifier(),
		gen.Bool(),
		gen.Identifier(),
		gen.SliceOf(gen.UInt8()),
	).Map(func(vals []interface{}) Part {
		p := Part{Name: vals[0].(string), Value: vals[3].([]byte)}
		if vals[1].(bool) {
			p.Filename = vals[2].(string) + ".bin"
		}
		return p
	})

	properties.Property("parts survive a conformant multipart parser", prop.ForAll(
		func(parts []Part) bool {
			body, contentType := Encode(parts...)
			got := parseMultipart(t, body, contentType)
			if len(got) != len(parts) {
				return false
			}
			for i := range parts {
				if got[i].Name != parts[i].Name ||
					got[i].Filename != parts[i].Filename ||
					!bytes.Equal(got[i].Value, parts[i].Value) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genPart),
	))

	properties.TestingRun(t)
}
