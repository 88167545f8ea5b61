package configs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/internal/config"
	"github.com/weisyn/zkapp/pkg/types"
)

func TestEmbeddedConfigsAreValid(t *testing.T) {
	for name, data := range map[string][]byte{"zkapp.json": Default(), "local.json": Local()} {
		t.Run(name, func(t *testing.T) {
			var cfg types.UserConfig
			require.NoError(t, json.Unmarshal(data, &cfg))
			require.NotNil(t, cfg.Zkapp)
			assert.NoError(t, config.ValidateMandatoryConfig(&cfg))
		})
	}
}
