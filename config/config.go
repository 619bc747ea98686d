package config

import (
	"sync"

	"github.com/skyvolt/fleetmon/setting"
	"github.com/spf13/viper"
)

var (
	once sync.Once
	conf Config
)

// GetConfig loads config.yaml once and returns the cached result.
func GetConfig() Config {
	once.Do(func() {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AutomaticEnv()

		setDefaults()
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				panic(err)
			}
		}

		if err := viper.Unmarshal(&conf); err != nil {
			panic(err)
		}
	})

	return conf
}

func setDefaults() {
	viper.SetDefault("database.path", "fleetmon.db")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("mqtt.topic_prefix", "fleetmon")
	viper.SetDefault("crontab.sync_time", setting.CrontabSyncTime)
	viper.SetDefault("crontab.aggregate_time", setting.CrontabAggregateTime)
	viper.SetDefault("crontab.alert_time", setting.CrontabAlertTime)
	viper.SetDefault("crontab.notify_time", setting.CrontabNotifyTime)
	viper.SetDefault("crontab.archive_time", setting.CrontabArchiveTime)
	viper.SetDefault("alert.active_power_threshold_w", setting.ActivePowerThresholdW)
}
