package catchapi_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catchapi "github.com/catchnotes/catchapi.go"
	"github.com/catchnotes/catchapi.go/contrib/testenv"
)

var env *testenv.Env

func TestMain(m *testing.M) {
	env = testenv.MustNew()
	code := m.Run()
	if err := env.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop notes API: %v\n", err)
	}
	os.Exit(code)
}

func TestE2E_notes(t *testing.T) {
	ctx := context.Background()
	_, u, err := env.Login(ctx, catchapi.WithLogger(testenv.NewTestLogger(testenv.WithIgnoreDebug())))
	require.NoError(t, err)

	_, before, err := u.GetNotes(ctx, 0, 1)
	require.NoError(t, err)

	n, err := u.PostNote(ctx, "Harry says catch is da bomb", nil)
	require.NoError(t, err)
	require.NotEmpty(t, n.ID)

	_, after, err := u.GetNotes(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	n.Text = "Harry says coolio"
	require.NoError(t, n.Save(ctx))
	got, err := u.GetNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harry says coolio", got.Text)

	require.NoError(t, n.Delete(ctx))
	assert.True(t, n.Deleted)
	require.ErrorIs(t, n.Save(ctx), catchapi.ErrDeleted)

	_, final, err := u.GetNotes(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, before, final)
}

func TestE2E_media(t *testing.T) {
	ctx := context.Background()
	_, u, err := env.Login(ctx)
	require.NoError(t, err)

	n, err := u.PostNote(ctx, "with attachment", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !n.Deleted {
			assert.NoError(t, n.Delete(context.Background()))
		}
	})

	m, err := n.AddMediaData(ctx, "pixel.gif", gifPixel, nil)
	require.NoError(t, err)
	require.Len(t, n.Media, 1)
	assert.Same(t, n, m.Note())

	data, err := m.FetchData(ctx)
	require.NoError(t, err)
	assert.Equal(t, gifPixel, data)

	require.NoError(t, m.Delete(ctx))
	assert.Empty(t, n.Media)

	media, err := n.FetchMedia(ctx)
	require.NoError(t, err)
	assert.Empty(t, media)

	require.NoError(t, n.Delete(ctx))
}

func TestE2E_unauthorized(t *testing.T) {
	ctx := context.Background()
	s, err := env.Session()
	require.NoError(t, err)

	_, err = s.Login(ctx, env.Username, env.Password+"-wrong")
	require.ErrorIs(t, err, catchapi.ErrAPI)
	var apiErr *catchapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

// 1x1 transparent GIF.
var gifPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}
