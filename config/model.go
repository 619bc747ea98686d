package config

type Config struct {
	Database DatabaseConfig      `mapstructure:"database"`
	Redis    RedisConfig         `mapstructure:"redis"`
	Elastic  ElasticsearchConfig `mapstructure:"elasticsearch"`
	MQTT     MQTTConfig          `mapstructure:"mqtt"`
	Server   ServerConfig        `mapstructure:"server"`
	Crontab  CrontabConfig       `mapstructure:"crontab"`
	Alert    AlertConfig         `mapstructure:"alert"`
	SnmpList []SnmpConfig        `mapstructure:"snmp_list"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type CrontabConfig struct {
	SyncTime      string `mapstructure:"sync_time"`
	AggregateTime string `mapstructure:"aggregate_time"`
	AlertTime     string `mapstructure:"alert_time"`
	NotifyTime    string `mapstructure:"notify_time"`
	ArchiveTime   string `mapstructure:"archive_time"`
}

type AlertConfig struct {
	ActivePowerThresholdW float64 `mapstructure:"active_power_threshold_w"`
}

type SnmpConfig struct {
	AgentHost  string `mapstructure:"agent_host"`
	TargetHost string `mapstructure:"target_host"`
	TargetPort int    `mapstructure:"target_port"`
}
