package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "MY_PROMPT", cfg.PromptEnv)
	assert.Equal(t, "shell>", cfg.DefaultPrompt)
	assert.Empty(t, cfg.HistoryFile)
	assert.Empty(t, cfg.EventLog)
}

func TestConfiguration_Validate(t *testing.T) {
	cases := map[string]struct {
		modify  func(*Configuration)
		wantErr string
	}{
		"default": {
			modify: func(*Configuration) {},
		},
		"missing prompt env": {
			modify:  func(c *Configuration) { c.PromptEnv = "" },
			wantErr: "prompt_env",
		},
		"prompt env with equals": {
			modify:  func(c *Configuration) { c.PromptEnv = "A=B" },
			wantErr: "prompt_env",
		},
		"missing default prompt": {
			modify:  func(c *Configuration) { c.DefaultPrompt = "" },
			wantErr: "default_prompt",
		},
		"negative history": {
			modify:  func(c *Configuration) { c.HistoryLimit = -1 },
			wantErr: "history_limit",
		},
		"huge history": {
			modify:  func(c *Configuration) { c.HistoryLimit = 100001 },
			wantErr: "history_limit",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
