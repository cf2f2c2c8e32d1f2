package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/ipastusi/dhcpreact/notify"
	"github.com/ipastusi/dhcpreact/state"
	"golang.org/x/sys/unix"
)

const (
	SourceUdp  = "udp"
	SourcePcap = "pcap"

	HistoryJson   = "json"
	HistorySqlite = "sqlite"

	EnvTelegramToken  = "DHCPREACT_TELEGRAM_TOKEN"
	EnvTelegramChatId = "DHCPREACT_TELEGRAM_CHAT_ID"
	EnvMqttPassword   = "DHCPREACT_MQTT_PASSWORD"
)

type HistoryConfig struct {
	Backend    *string `yaml:"backend"`
	File       *string `yaml:"file"`
	MaxEntries *int    `yaml:"maxEntries"`
}

type HttpConfig struct {
	Enabled *bool   `yaml:"enabled"`
	Listen  *string `yaml:"listen"`
}

type ArchiveConfig struct {
	Directory        *string `yaml:"directory"`
	PrependTimestamp *bool   `yaml:"prependTimestamp"`
	AppendNewLine    *bool   `yaml:"appendNewLine"`
	PurgeAfterDays   *uint   `yaml:"purgeAfterDays"`
}

type LookupConfig struct {
	File       *string `yaml:"file"`
	Sheet      *string `yaml:"sheet"`
	MacColumn  *string `yaml:"macColumn"`
	NameColumn *string `yaml:"nameColumn"`
}

type TelegramConfig struct {
	ApiToken *string `yaml:"apiToken"`
	ChatId   *string `yaml:"chatId"`
	BaseUrl  *string `yaml:"baseUrl"`
}

type MqttConfig struct {
	Broker   *string `yaml:"broker"`
	Topic    *string `yaml:"topic"`
	ClientId *string `yaml:"clientId"`
	Username *string `yaml:"username"`
	Password *string `yaml:"password"`
}

type FileConfig struct {
	Directory           *string `yaml:"directory"`
	AutoCleanupDelaySec *uint   `yaml:"autoCleanupDelaySec"`
}

type NotificationsConfig struct {
	Template      *string         `yaml:"template"`
	DefaultPolicy *string         `yaml:"defaultPolicy"`
	MaxPerDay     *int            `yaml:"maxPerDay"`
	DndStartHour  *int            `yaml:"dndStartHour"`
	DndEndHour    *int            `yaml:"dndEndHour"`
	Telegram      *TelegramConfig `yaml:"telegram"`
	Mqtt          *MqttConfig     `yaml:"mqtt"`
	File          *FileConfig     `yaml:"file"`
}

type ExcludeConfig struct {
	IpFile  *string `yaml:"ipFile"`
	MacFile *string `yaml:"macFile"`
}

type Config struct {
	LogFileName   *string              `yaml:"log"`
	LogLevel      *string              `yaml:"logLevel"`
	Source        *string              `yaml:"source"`
	Listen        *string              `yaml:"listen"`
	IfaceName     *string              `yaml:"interface"`
	BpfFilter     *string              `yaml:"bpfFilter"`
	StateFileName *string              `yaml:"stateFile"`
	Ui            *bool                `yaml:"ui"`
	History       *HistoryConfig       `yaml:"history"`
	Http          *HttpConfig          `yaml:"http"`
	Archive       *ArchiveConfig       `yaml:"archive"`
	Lookup        *LookupConfig        `yaml:"lookup"`
	Notifications *NotificationsConfig `yaml:"notifications"`
	Exclude       *ExcludeConfig       `yaml:"exclude"`
}

// Overrides holds command line values; nil fields leave the file's values untouched.
type Overrides struct {
	LogFileName   *string
	StateFileName *string
	IfaceName     *string
	Listen        *string
}

// GetConfig reads data, applies command line overrides, then environment overrides for
// secrets, fills in defaults and validates the result.
func GetConfig(data []byte, overrides Overrides, getenv func(string) string) (Config, error) {
	config, err := readConfig(data)
	if err != nil {
		return Config{}, err
	}
	config.applyOverrides(overrides)
	config.applyEnv(getenv)
	config.applyDefaults()
	if err = config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func readConfig(data []byte) (Config, error) {
	config := &Config{}
	err := yaml.UnmarshalWithOptions(data, config, yaml.Strict())
	if err != nil {
		return Config{}, err
	}
	return *config, nil
}

func (cfg *Config) applyOverrides(o Overrides) {
	if o.LogFileName != nil {
		cfg.LogFileName = o.LogFileName
	}
	if o.StateFileName != nil {
		cfg.StateFileName = o.StateFileName
	}
	if o.IfaceName != nil {
		cfg.IfaceName = o.IfaceName
	}
	if o.Listen != nil {
		cfg.Listen = o.Listen
	}
}

func (cfg *Config) applyEnv(getenv func(string) string) {
	if getenv == nil {
		return
	}
	if cfg.Notifications == nil {
		cfg.Notifications = &NotificationsConfig{}
	}

	token, chatId := getenv(EnvTelegramToken), getenv(EnvTelegramChatId)
	if token != "" || chatId != "" {
		if cfg.Notifications.Telegram == nil {
			cfg.Notifications.Telegram = &TelegramConfig{}
		}
		if token != "" {
			cfg.Notifications.Telegram.ApiToken = &token
		}
		if chatId != "" {
			cfg.Notifications.Telegram.ChatId = &chatId
		}
	}

	// a password alone does not enable MQTT
	if password := getenv(EnvMqttPassword); password != "" && cfg.Notifications.Mqtt != nil {
		cfg.Notifications.Mqtt.Password = &password
	}
}

func (cfg *Config) applyDefaults() {
	setDefault(&cfg.LogFileName, "dhcpreact.log")
	setDefault(&cfg.LogLevel, "info")
	setDefault(&cfg.Source, SourceUdp)
	setDefault(&cfg.Listen, "0.0.0.0:514")
	setDefault(&cfg.IfaceName, "")
	setDefault(&cfg.BpfFilter, "udp port 514")
	setDefault(&cfg.StateFileName, "dhcpack_status.json")
	setDefault(&cfg.Ui, false)

	if cfg.History == nil {
		cfg.History = &HistoryConfig{}
	}
	setDefault(&cfg.History.Backend, HistoryJson)
	if *cfg.History.Backend == HistorySqlite {
		setDefault(&cfg.History.File, "notification_history.db")
	} else {
		setDefault(&cfg.History.File, "notification_history.json")
	}
	setDefault(&cfg.History.MaxEntries, 0)

	if cfg.Http == nil {
		cfg.Http = &HttpConfig{}
	}
	setDefault(&cfg.Http.Enabled, false)
	setDefault(&cfg.Http.Listen, "0.0.0.0:8080")

	if cfg.Archive != nil {
		setDefault(&cfg.Archive.Directory, ".")
		setDefault(&cfg.Archive.PrependTimestamp, true)
		setDefault(&cfg.Archive.AppendNewLine, true)
		setDefault(&cfg.Archive.PurgeAfterDays, 0)
	}

	if cfg.Lookup == nil {
		cfg.Lookup = &LookupConfig{}
	}
	setDefault(&cfg.Lookup.File, "")
	setDefault(&cfg.Lookup.Sheet, "")
	setDefault(&cfg.Lookup.MacColumn, "mac")
	setDefault(&cfg.Lookup.NameColumn, "name")

	if cfg.Notifications == nil {
		cfg.Notifications = &NotificationsConfig{}
	}
	n := cfg.Notifications
	setDefault(&n.Template, notify.DefaultTemplate)
	setDefault(&n.DefaultPolicy, state.PolicyEachTimeMaxPerDayIntermittent.String())
	setDefault(&n.MaxPerDay, 5)
	setDefault(&n.DndStartHour, 23)
	setDefault(&n.DndEndHour, 7)
	if n.Telegram != nil {
		setDefault(&n.Telegram.BaseUrl, notify.DefaultTelegramBaseUrl)
	}
	if n.Mqtt != nil {
		setDefault(&n.Mqtt.Topic, "dhcpreact/notifications")
		setDefault(&n.Mqtt.ClientId, "dhcpreact")
		setDefault(&n.Mqtt.Username, "")
		setDefault(&n.Mqtt.Password, "")
	}
	if n.File != nil {
		setDefault(&n.File.Directory, ".")
		setDefault(&n.File.AutoCleanupDelaySec, 0)
	}

	if cfg.Exclude == nil {
		cfg.Exclude = &ExcludeConfig{}
	}
}

func setDefault[T any](field **T, value T) {
	if *field == nil {
		*field = &value
	}
}

func (cfg *Config) validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(*cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %v", *cfg.LogLevel)
	}

	switch *cfg.Source {
	case SourceUdp:
		if _, _, err := net.SplitHostPort(*cfg.Listen); err != nil {
			return fmt.Errorf("invalid listen address %v: %w", *cfg.Listen, err)
		}
	case SourcePcap:
		if *cfg.IfaceName == "" {
			return errors.New("no interface name provided")
		} else if _, err := net.InterfaceByName(*cfg.IfaceName); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown source %q, expected %v or %v", *cfg.Source, SourceUdp, SourcePcap)
	}

	if b := *cfg.History.Backend; b != HistoryJson && b != HistorySqlite {
		return fmt.Errorf("unknown history backend %q, expected %v or %v", b, HistoryJson, HistorySqlite)
	}
	if *cfg.History.MaxEntries < 0 {
		return fmt.Errorf("history maxEntries must not be negative, got: %v", *cfg.History.MaxEntries)
	}

	if *cfg.Http.Enabled {
		if _, _, err := net.SplitHostPort(*cfg.Http.Listen); err != nil {
			return fmt.Errorf("invalid http listen address %v: %w", *cfg.Http.Listen, err)
		}
	}

	if cfg.Archive != nil {
		if err := writableDir(*cfg.Archive.Directory); err != nil {
			return err
		}
	}

	n := cfg.Notifications
	if _, err := state.ParsePolicy(*n.DefaultPolicy); err != nil {
		return err
	}
	if *n.MaxPerDay < 0 {
		return fmt.Errorf("maxPerDay must not be negative, got: %v", *n.MaxPerDay)
	}
	for _, hour := range []int{*n.DndStartHour, *n.DndEndHour} {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("do not disturb hours must be between 0 and 23, got: %v", hour)
		}
	}
	if n.Telegram != nil {
		if n.Telegram.ApiToken == nil || *n.Telegram.ApiToken == "" {
			return fmt.Errorf("telegram API token missing, set it in the config or in %v", EnvTelegramToken)
		}
		if n.Telegram.ChatId == nil || *n.Telegram.ChatId == "" {
			return fmt.Errorf("telegram chat ID missing, set it in the config or in %v", EnvTelegramChatId)
		}
	}
	if n.Mqtt != nil && (n.Mqtt.Broker == nil || *n.Mqtt.Broker == "") {
		return errors.New("mqtt broker missing")
	}
	if n.File != nil {
		if err := writableDir(*n.File.Directory); err != nil {
			return err
		}
	}

	for _, excludeFile := range []*string{cfg.Exclude.IpFile, cfg.Exclude.MacFile} {
		if excludeFile != nil {
			if _, err := os.Stat(*excludeFile); err != nil {
				return fmt.Errorf("file does not exist: %v", *excludeFile)
			}
		}
	}
	return nil
}

func writableDir(dir string) error {
	// we might want to make it work on Windows one day. today is not that day
	if unix.Access(dir, unix.W_OK) != nil {
		return fmt.Errorf("directory does not exist or is not writable: %v", dir)
	}
	return nil
}

// Level is only meaningful on a validated config.
func (cfg Config) Level() slog.Level {
	var level slog.Level
	_ = level.UnmarshalText([]byte(*cfg.LogLevel))
	return level
}

func (cfg Config) Policy() state.Policy {
	policy, _ := state.ParsePolicy(*cfg.Notifications.DefaultPolicy)
	return policy
}

// Redacted returns a copy safe to print, with secrets masked.
func (cfg Config) Redacted() Config {
	if cfg.Notifications == nil {
		return cfg
	}
	masked := "REDACTED"
	n := *cfg.Notifications
	if n.Telegram != nil && n.Telegram.ApiToken != nil {
		telegram := *n.Telegram
		telegram.ApiToken = &masked
		n.Telegram = &telegram
	}
	if n.Mqtt != nil && n.Mqtt.Password != nil && *n.Mqtt.Password != "" {
		mqtt := *n.Mqtt
		mqtt.Password = &masked
		n.Mqtt = &mqtt
	}
	cfg.Notifications = &n
	return cfg
}
