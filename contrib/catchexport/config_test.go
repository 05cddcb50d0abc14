package catchexport_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchnotes/catchapi.go/contrib/catchexport"
)

func TestNewConfig(t *testing.T) {
	config := catchexport.NewConfig()
	assert.Equal(t, "https://api.catch.com", config.Endpoint)
	assert.Equal(t, "notes.yaml", config.Output)
	assert.Equal(t, catchexport.FormatYAML, config.Format)
	assert.Equal(t, 100, config.PageSize)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, "info", config.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *catchexport.Config {
		c := catchexport.NewConfig()
		c.Username = "harry"
		c.Password = "p4ss"
		return c
	}

	t.Run("ValidConfig", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("TokenOnly", func(t *testing.T) {
		c := catchexport.NewConfig()
		c.Token = "tok"
		assert.NoError(t, c.Validate())
	})

	tests := []struct {
		name   string
		modify func(c *catchexport.Config)
		field  string
	}{
		{"MissingCredentials", func(c *catchexport.Config) { c.Username, c.Password = "", "" }, "Username"},
		{"MissingPassword", func(c *catchexport.Config) { c.Password = "" }, "Password"},
		{"BadEndpoint", func(c *catchexport.Config) { c.Endpoint = "not a url" }, "Endpoint"},
		{"BadFormat", func(c *catchexport.Config) { c.Format = "xml" }, "Format"},
		{"PageSizeTooLarge", func(c *catchexport.Config) { c.PageSize = 101 }, "PageSize"},
		{"NegativeTimeout", func(c *catchexport.Config) { c.Timeout = -time.Second }, "Timeout"},
		{"BadLogLevel", func(c *catchexport.Config) { c.Log.Level = "loud" }, "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: http://localhost:8080
username: harry
password: p4ss
format: json
page-size: 25
timeout: 5s
log:
  level: debug
`), 0o600))

	config, err := catchexport.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", config.Endpoint)
	assert.Equal(t, "harry", config.Username)
	assert.Equal(t, catchexport.FormatJSON, config.Format)
	assert.Equal(t, 25, config.PageSize)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, "debug", config.Log.Level)
	// not in the file
	assert.Equal(t, "notes.yaml", config.Output)
	require.NoError(t, config.Validate())

	t.Run("RoundTrip", func(t *testing.T) {
		saved := filepath.Join(t.TempDir(), "saved.yaml")
		require.NoError(t, config.Save(saved))
		again, err := catchexport.LoadConfig(saved)
		require.NoError(t, err)
		assert.Equal(t, config, again)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := catchexport.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config file failed")
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("page-size: [1"), 0o600))
		_, err := catchexport.LoadConfig(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config file failed")
	})
}
