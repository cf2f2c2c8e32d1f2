package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-yaml"
	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/ipastusi/dhcpreact/archive"
	"github.com/ipastusi/dhcpreact/cli"
	"github.com/ipastusi/dhcpreact/config"
	"github.com/ipastusi/dhcpreact/event"
	"github.com/ipastusi/dhcpreact/history"
	"github.com/ipastusi/dhcpreact/lookup"
	"github.com/ipastusi/dhcpreact/monitor"
	"github.com/ipastusi/dhcpreact/notify"
	"github.com/ipastusi/dhcpreact/report"
	"github.com/ipastusi/dhcpreact/source"
	"github.com/ipastusi/dhcpreact/state"
)

func main() {
	flags := cli.GetFlags()
	var cfgData []byte
	var err error
	if flags.ConfigFileName != nil && *flags.ConfigFileName != "" {
		cfgData, err = os.ReadFile(*flags.ConfigFileName)
		exitOnError(err)
	}

	getenv, err := config.EnvLookup(".env")
	exitOnError(err)

	overrides := config.Overrides{
		LogFileName:   flags.LogFileName,
		StateFileName: flags.StateFileName,
		IfaceName:     flags.IfaceName,
		Listen:        flags.Listen,
	}
	cfg, err := config.GetConfig(cfgData, overrides, getenv)
	if flags.RenderConfig {
		renderedConfig, errMarshal := yaml.Marshal(cfg.Redacted())
		fmt.Printf("%v", string(renderedConfig))
		exitOnErrors(nonNil(err, errMarshal))
		os.Exit(0)
	}
	if err != nil && err.Error() == "no interface name provided" {
		fmt.Printf("Usage of %v:\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	exitOnError(err)

	logFile, err := os.OpenFile(*cfg.LogFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	exitOnError(err)
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: cfg.Level()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := state.NewFileStore(*cfg.StateFileName)
	devices, err := store.Load()
	exitOnError(err)
	if n, merged := devices.Normalize(cfg.Policy()); n > 0 {
		if len(merged) > 0 {
			logger.Warn("merged duplicate device records, kept the most recent", slog.Any("MACs", merged))
		}
		logger.Info("migrated device records", slog.Int("count", n))
		exitOnError(store.Save(devices))
	}

	names, err := lookup.Load(*cfg.Lookup.File, *cfg.Lookup.Sheet, *cfg.Lookup.MacColumn, *cfg.Lookup.NameColumn)
	exitOnError(err)
	logger.Info("lookup table loaded", slog.Int("entries", names.Len()))

	recorder, err := openHistory(cfg)
	exitOnError(err)
	defer closeWithLog(logger, recorder)

	filter, err := readFilter(cfg.Exclude)
	exitOnError(err)

	senders, err := buildSenders(logger, cfg)
	exitOnError(err)
	startJanitors(ctx, logger, cfg)

	n := cfg.Notifications
	opts := notify.Options{
		DefaultPolicy: cfg.Policy(),
		MaxPerDay:     *n.MaxPerDay,
		Template:      *n.Template,
		Dnd:           notify.Dnd{StartHour: *n.DndStartHour, EndHour: *n.DndEndHour},
	}
	engine := notify.NewEngine(logger, opts, store, names, notify.NewDispatcher(logger, senders...), recorder)

	var observers []monitor.Observer
	var uiApp *UIApp
	if *cfg.Ui {
		uiApp = newUIApp(devices)
		observers = append(observers, uiApp.observe)
	}

	var archiver monitor.LineArchiver
	if a := cfg.Archive; a != nil {
		archiver = archive.NewArchiver(*a.Directory, *a.PrependTimestamp, *a.AppendNewLine)
	}
	m := monitor.New(logger, archiver, filter, engine, observers...)

	if *cfg.Http.Enabled {
		server := report.NewServer(logger, store, recorder)
		go func() {
			if err := server.ListenAndServe(ctx, *cfg.Http.Listen); err != nil {
				logger.Error("report server failed", slog.Any("error", err))
			}
		}()
	}

	lines, sourceLabel, err := openSource(ctx, logger, cfg, stop)
	exitOnError(err)

	if uiApp != nil {
		go func() {
			if err := loadUI(uiApp, sourceLabel, stop); err != nil {
				logger.Error("unable to load the UI", slog.Any("error", err))
				stop()
			}
		}()
	}

	logger.Info("dhcpreact started", slog.String("source", sourceLabel))
	m.Run(ctx, lines)
	if uiApp != nil {
		uiApp.app.Stop()
	}
	logger.Info("dhcpreact stopped")
}

// openSource starts the configured event source. Lines stop when ctx is done.
func openSource(ctx context.Context, logger *slog.Logger, cfg config.Config, stop context.CancelFunc) (<-chan string, string, error) {
	if *cfg.Source == config.SourcePcap {
		ifaceName := *cfg.IfaceName
		pcapHandle, err := pcap.OpenLive(ifaceName, int32(source.MaxDatagramSize+128), false, pcap.BlockForever)
		if err != nil {
			return nil, "", err
		}
		if err = pcapHandle.SetBPFFilter(*cfg.BpfFilter); err != nil {
			pcapHandle.Close()
			return nil, "", err
		}
		context.AfterFunc(ctx, pcapHandle.Close)
		packetSource := gopacket.NewPacketSource(pcapHandle, pcapHandle.LinkType())
		return source.Packets(packetSource.Packets()), "pcap " + ifaceName, nil
	}

	addr := *cfg.Listen
	lines := make(chan string)
	go func() {
		err := source.ListenUdp(ctx, addr, func(line string) {
			select {
			case lines <- line:
			case <-ctx.Done():
			}
		})
		if err != nil {
			logger.Error("syslog listener failed", slog.Any("error", err))
			stop()
		}
	}()
	return lines, "udp " + addr, nil
}

func openHistory(cfg config.Config) (history.Recorder, error) {
	if *cfg.History.Backend == config.HistorySqlite {
		return history.NewSqliteRecorder(*cfg.History.File)
	}
	return history.NewFileRecorder(*cfg.History.File, *cfg.History.MaxEntries), nil
}

func readFilter(exclude *config.ExcludeConfig) (event.Filter, error) {
	var excludeIPs, excludeMACs map[string]struct{}
	if exclude.IpFile != nil {
		ipFile, err := os.Open(*exclude.IpFile)
		if err != nil {
			return event.Filter{}, err
		}
		excludeIPs, err = event.ReadIPs(ipFile)
		_ = ipFile.Close()
		if err != nil {
			return event.Filter{}, err
		}
	}
	if exclude.MacFile != nil {
		macFile, err := os.Open(*exclude.MacFile)
		if err != nil {
			return event.Filter{}, err
		}
		excludeMACs, err = event.ReadMACs(macFile)
		_ = macFile.Close()
		if err != nil {
			return event.Filter{}, err
		}
	}
	return event.NewFilter(excludeIPs, excludeMACs), nil
}

func buildSenders(logger *slog.Logger, cfg config.Config) ([]notify.Sender, error) {
	var senders []notify.Sender
	n := cfg.Notifications
	if t := n.Telegram; t != nil {
		telegram, err := notify.NewTelegramSender(*t.BaseUrl, *t.ApiToken, *t.ChatId)
		if err != nil {
			return nil, err
		}
		senders = append(senders, telegram)
	}
	if mq := n.Mqtt; mq != nil {
		client, err := notify.NewMqttClient(logger, notify.MqttConfig{
			Broker:   *mq.Broker,
			ClientId: *mq.ClientId,
			Username: *mq.Username,
			Password: *mq.Password,
		})
		if err != nil {
			return nil, err
		}
		senders = append(senders, notify.NewMqttSender(client, *mq.Topic))
	}
	if f := n.File; f != nil {
		senders = append(senders, notify.NewFileSender(*f.Directory))
	}
	return senders, nil
}

func startJanitors(ctx context.Context, logger *slog.Logger, cfg config.Config) {
	if a := cfg.Archive; a != nil && *a.PurgeAfterDays > 0 {
		janitor, err := archive.NewArchiveJanitor(logger, *a.Directory, *a.PurgeAfterDays)
		exitOnError(err)
		janitor.Start(ctx)
	}
	if f := cfg.Notifications.File; f != nil && *f.AutoCleanupDelaySec > 0 {
		janitor, err := archive.NewNotificationJanitor(logger, *f.Directory, *f.AutoCleanupDelaySec)
		exitOnError(err)
		janitor.Start(ctx)
	}
}

func closeWithLog(logger *slog.Logger, recorder history.Recorder) {
	if err := recorder.Close(); err != nil {
		logger.Error("unable to close notification history", slog.Any("error", err))
	}
}

func nonNil(errs ...error) []error {
	var result []error
	for _, err := range errs {
		if err != nil {
			result = append(result, err)
		}
	}
	return result
}

func exitOnError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func exitOnErrors(errs []error) {
	if len(errs) != 0 {
		fmt.Println(errors.Join(errs...))
		os.Exit(1)
	}
}
