package config

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ipastusi/dhcpreact/notify"
	"github.com/ipastusi/dhcpreact/state"
)

func ptr[T any](v T) *T {
	return &v
}

func noEnv(string) string { return "" }

func Test_GetConfigDefaults(t *testing.T) {
	t.Parallel()

	c, err := GetConfig(nil, Overrides{}, noEnv)
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}

	expC := Config{
		LogFileName:   ptr("dhcpreact.log"),
		LogLevel:      ptr("info"),
		Source:        ptr(SourceUdp),
		Listen:        ptr("0.0.0.0:514"),
		IfaceName:     ptr(""),
		BpfFilter:     ptr("udp port 514"),
		StateFileName: ptr("dhcpack_status.json"),
		Ui:            ptr(false),
		History: &HistoryConfig{
			Backend:    ptr(HistoryJson),
			File:       ptr("notification_history.json"),
			MaxEntries: ptr(0),
		},
		Http: &HttpConfig{
			Enabled: ptr(false),
			Listen:  ptr("0.0.0.0:8080"),
		},
		Lookup: &LookupConfig{
			File:       ptr(""),
			Sheet:      ptr(""),
			MacColumn:  ptr("mac"),
			NameColumn: ptr("name"),
		},
		Notifications: &NotificationsConfig{
			Template:      ptr(notify.DefaultTemplate),
			DefaultPolicy: ptr("each_time_max_per_day_intermittent"),
			MaxPerDay:     ptr(5),
			DndStartHour:  ptr(23),
			DndEndHour:    ptr(7),
		},
		Exclude: &ExcludeConfig{},
	}

	if diff := cmp.Diff(expC, c); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
	if c.Policy() != state.PolicyEachTimeMaxPerDayIntermittent {
		t.Errorf("unexpected policy: %v", c.Policy())
	}
}

func Test_GetConfigCustom(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ipFile := filepath.Join(dir, "ips.txt")
	if err := os.WriteFile(ipFile, []byte("192.168.1.1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	data := []byte(`
log: custom.log
logLevel: debug
listen: 127.0.0.1:5514
stateFile: state.json
ui: true
history:
  backend: sqlite
  maxEntries: 1000
http:
  enabled: true
  listen: 127.0.0.1:8081
archive:
  directory: ` + dir + `
  purgeAfterDays: 30
lookup:
  file: devices.xlsx
  sheet: Devices
notifications:
  template: "{NAME} ({VENDOR})"
  defaultPolicy: first_time
  maxPerDay: 3
  dndStartHour: 22
  dndEndHour: 6
  telegram:
    chatId: "-1001"
  mqtt:
    broker: tcp://localhost:1883
  file:
    directory: ` + dir + `
    autoCleanupDelaySec: 60
exclude:
  ipFile: ` + ipFile + `
`)

	env := map[string]string{
		EnvTelegramToken: "123:secret",
		EnvMqttPassword:  "hunter2",
	}
	c, err := GetConfig(data, Overrides{StateFileName: ptr("override.json")}, func(key string) string { return env[key] })
	if err != nil {
		t.Fatalf("Error loading yaml: %v", err)
	}

	expC := Config{
		LogFileName:   ptr("custom.log"),
		LogLevel:      ptr("debug"),
		Source:        ptr(SourceUdp),
		Listen:        ptr("127.0.0.1:5514"),
		IfaceName:     ptr(""),
		BpfFilter:     ptr("udp port 514"),
		StateFileName: ptr("override.json"),
		Ui:            ptr(true),
		History: &HistoryConfig{
			Backend:    ptr(HistorySqlite),
			File:       ptr("notification_history.db"),
			MaxEntries: ptr(1000),
		},
		Http: &HttpConfig{
			Enabled: ptr(true),
			Listen:  ptr("127.0.0.1:8081"),
		},
		Archive: &ArchiveConfig{
			Directory:        ptr(dir),
			PrependTimestamp: ptr(true),
			AppendNewLine:    ptr(true),
			PurgeAfterDays:   ptr(uint(30)),
		},
		Lookup: &LookupConfig{
			File:       ptr("devices.xlsx"),
			Sheet:      ptr("Devices"),
			MacColumn:  ptr("mac"),
			NameColumn: ptr("name"),
		},
		Notifications: &NotificationsConfig{
			Template:      ptr("{NAME} ({VENDOR})"),
			DefaultPolicy: ptr("first_time"),
			MaxPerDay:     ptr(3),
			DndStartHour:  ptr(22),
			DndEndHour:    ptr(6),
			Telegram: &TelegramConfig{
				ApiToken: ptr("123:secret"),
				ChatId:   ptr("-1001"),
				BaseUrl:  ptr(notify.DefaultTelegramBaseUrl),
			},
			Mqtt: &MqttConfig{
				Broker:   ptr("tcp://localhost:1883"),
				Topic:    ptr("dhcpreact/notifications"),
				ClientId: ptr("dhcpreact"),
				Username: ptr(""),
				Password: ptr("hunter2"),
			},
			File: &FileConfig{
				Directory:           ptr(dir),
				AutoCleanupDelaySec: ptr(uint(60)),
			},
		},
		Exclude: &ExcludeConfig{IpFile: ptr(ipFile)},
	}

	if diff := cmp.Diff(expC, c); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
	if c.Level().String() != "DEBUG" {
		t.Errorf("unexpected log level: %v", c.Level())
	}
}

func Test_GetConfigPcap(t *testing.T) {
	t.Parallel()

	iface, err := net.InterfaceByIndex(1)
	if err != nil {
		t.Skip("no network interface available:", err)
	}

	c, err := GetConfig([]byte("source: pcap\n"), Overrides{IfaceName: &iface.Name}, noEnv)
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}
	if *c.IfaceName != iface.Name || *c.BpfFilter != "udp port 514" {
		t.Errorf("unexpected capture settings: %v %v", *c.IfaceName, *c.BpfFilter)
	}
}

func Test_GetConfigInvalid(t *testing.T) {
	t.Parallel()

	data := map[string]struct {
		yaml     string
		expected string
	}{
		"unknown field":         {"color: blue\n", "unknown field"},
		"unknown source":        {"source: tcp\n", "unknown source"},
		"pcap without iface":    {"source: pcap\n", "no interface name provided"},
		"pcap with bad iface":   {"source: pcap\ninterface: eth99\n", "no such network interface"},
		"bad listen address":    {"listen: nowhere\n", "invalid listen address"},
		"bad log level":         {"logLevel: loud\n", "invalid log level"},
		"bad history backend":   {"history:\n  backend: redis\n", "unknown history backend"},
		"negative max entries":  {"history:\n  maxEntries: -1\n", "maxEntries"},
		"unknown policy":        {"notifications:\n  defaultPolicy: sometimes\n", "unknown notification policy"},
		"dnd hour out of range": {"notifications:\n  dndStartHour: 24\n", "between 0 and 23"},
		"telegram without auth": {"notifications:\n  telegram: {}\n", "telegram API token missing"},
		"mqtt without broker":   {"notifications:\n  mqtt: {}\n", "mqtt broker missing"},
		"missing archive dir":   {"archive:\n  directory: /nonexistent\n", "not writable"},
		"missing exclude file":  {"exclude:\n  macFile: nonexistent.txt\n", "file does not exist"},
	}

	for name, d := range data {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := GetConfig([]byte(d.yaml), Overrides{}, noEnv)
			if err == nil || !strings.Contains(err.Error(), d.expected) {
				t.Errorf("expected error containing %q, got: %v", d.expected, err)
			}
		})
	}
}

func Test_GetConfigEnvIgnoredWithoutMqtt(t *testing.T) {
	t.Parallel()

	c, err := GetConfig(nil, Overrides{}, func(key string) string {
		if key == EnvMqttPassword {
			return "hunter2"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}
	if c.Notifications.Mqtt != nil {
		t.Error("an MQTT password alone must not enable MQTT")
	}
}

func Test_Redacted(t *testing.T) {
	t.Parallel()

	data := []byte(`
notifications:
  telegram:
    apiToken: "123:secret"
    chatId: "-1001"
  mqtt:
    broker: tcp://localhost:1883
    password: hunter2
`)
	c, err := GetConfig(data, Overrides{}, noEnv)
	if err != nil {
		t.Fatalf("Error loading yaml: %v", err)
	}

	r := c.Redacted()
	if *r.Notifications.Telegram.ApiToken != "REDACTED" || *r.Notifications.Mqtt.Password != "REDACTED" {
		t.Errorf("secrets not masked: %v %v", *r.Notifications.Telegram.ApiToken, *r.Notifications.Mqtt.Password)
	}
	if *c.Notifications.Telegram.ApiToken != "123:secret" || *c.Notifications.Mqtt.Password != "hunter2" {
		t.Error("original config must not be modified")
	}
	if *r.Notifications.Telegram.ChatId != "-1001" {
		t.Errorf("unexpected chat ID: %v", *r.Notifications.Telegram.ChatId)
	}
}
