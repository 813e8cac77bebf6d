// Package config loads runtime configuration from the environment.
package config

import "github.com/spf13/viper"

// Config holds all runtime settings. Everything has a working default
// so the binary runs with no environment at all.
type Config struct {
	ServerAddr   string  `mapstructure:"REPCOACH_ADDR"`
	DataDir      string  `mapstructure:"REPCOACH_DATA_DIR"`
	CameraID     int     `mapstructure:"REPCOACH_CAMERA_ID"`
	MotionThresh float64 `mapstructure:"REPCOACH_MOTION_THRESHOLD"`
	MQTTBroker   string  `mapstructure:"REPCOACH_MQTT_BROKER"`
	MQTTClientID string  `mapstructure:"REPCOACH_MQTT_CLIENT_ID"`
	MQTTTopic    string  `mapstructure:"REPCOACH_MQTT_TOPIC"`
	StaticDir    string  `mapstructure:"REPCOACH_STATIC_DIR"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("REPCOACH_ADDR", ":8080")
	viper.SetDefault("REPCOACH_DATA_DIR", "")
	viper.SetDefault("REPCOACH_CAMERA_ID", 0)
	viper.SetDefault("REPCOACH_MOTION_THRESHOLD", 1.0)
	viper.SetDefault("REPCOACH_MQTT_BROKER", "") // empty disables telemetry
	viper.SetDefault("REPCOACH_MQTT_CLIENT_ID", "repcoach")
	viper.SetDefault("REPCOACH_MQTT_TOPIC", "repcoach/events")
	viper.SetDefault("REPCOACH_STATIC_DIR", "")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
