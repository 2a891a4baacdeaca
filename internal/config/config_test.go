package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qsearch/internal/eventbus"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	svc := NewConfigService(filepath.Join(t.TempDir(), "nope.toml"))

	cfg, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/search", cfg.API)
	assert.Equal(t, 3, cfg.MinChars)
	assert.Equal(t, time.Second, cfg.Timeout.Duration)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce.Duration)
	assert.Equal(t, 100*time.Millisecond, cfg.ScrollDebounce.Duration)
	assert.Equal(t, "guide", cfg.ResultType)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	svc := NewConfigService(path)

	cfg := DefaultConfig()
	cfg.Server = "https://search.example.org"
	cfg.MinChars = 2
	cfg.Timeout = Duration{2500 * time.Millisecond}
	cfg.Params["version"] = "3.8"
	require.NoError(t, svc.Save(cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "timeout = '2.5s'")

	loaded, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("min_chars = 5\ndebounce = \"50ms\"\n"), 0644))

	cfg, err := NewConfigService(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MinChars)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce.Duration)
	assert.Equal(t, "/api/search", cfg.API)
	require.Len(t, cfg.Fields, 2)
	assert.Equal(t, "q", cfg.Fields[0].Name)
}

func TestLoadCustomFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[fields]]
name = "term"
kind = "input"

[[fields]]
name = "lang"
kind = "select"
options = ["en", "es"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfigService(path).Load()
	require.NoError(t, err)
	require.Len(t, cfg.Fields, 2)
	assert.Equal(t, Field{Name: "term", Kind: KindInput}, cfg.Fields[0])
	assert.Equal(t, []string{"en", "es"}, cfg.Fields[1].Options)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"bad duration":      "timeout = \"soon\"\n",
		"negative min":      "min_chars = -1\n",
		"unknown kind":      "[[fields]]\nname = \"x\"\nkind = \"radio\"\n",
		"select no options": "[[fields]]\nname = \"x\"\nkind = \"select\"\n",
		"duplicate field":   "[[fields]]\nname = \"x\"\nkind = \"input\"\n[[fields]]\nname = \"x\"\nkind = \"input\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := NewConfigService(path).Load()
			require.Error(t, err)
		})
	}
}

func TestLoadPublishesConfigLoaded(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	defer bus.Close()

	got := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) { got <- e })

	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := NewConfigServiceWithBus(path, bus).Load()
	require.NoError(t, err)

	select {
	case e := <-got:
		assert.Equal(t, path, e.(eventbus.ConfigLoadedEvent).Path)
	case <-time.After(time.Second):
		t.Fatal("ConfigLoaded not published")
	}
}
