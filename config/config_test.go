package config_test

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdfsclient/config"
)

func TestDefaultIsValidOnceTrackersSet(t *testing.T) {
	cfg := config.Default()
	assert.NotNil(t, cfg.Validate())

	cfg.TrackerAddrs = []string{"127.0.0.1:22122"}
	assert.Nil(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveMaxConns(t *testing.T) {
	cfg := config.Default()
	cfg.TrackerAddrs = []string{"127.0.0.1:22122"}
	cfg.MaxConns = 0
	assert.NotNil(t, cfg.Validate())
}

func TestValidateRejectsNegativeRetryCount(t *testing.T) {
	cfg := config.Default()
	cfg.TrackerAddrs = []string{"127.0.0.1:22122"}
	cfg.RetryCount = -1
	assert.NotNil(t, cfg.Validate())
}

func TestFromViperAppliesDefaultsAndOverrides(t *testing.T) {
	vip := viper.New()
	vip.Set("fdfs.tracker_addrs", []string{"10.0.0.1:22122", "10.0.0.2:22122"})
	vip.Set("fdfs.retry_count", 5)

	cfg, err := config.FromViper(vip, "fdfs")
	require.Nil(t, err)
	assert.Equal(t, []string{"10.0.0.1:22122", "10.0.0.2:22122"}, cfg.TrackerAddrs)
	assert.Equal(t, 5, cfg.RetryCount)
	assert.Equal(t, 10, cfg.MaxConns)
}
