package cli

import (
	"flag"
	"os"
)

// Flags holds the command line. Pointer fields are nil unless the flag was given explicitly,
// so they only override the config file when set.
type Flags struct {
	ConfigFileName *string
	LogFileName    *string
	StateFileName  *string
	IfaceName      *string
	Listen         *string
	RenderConfig   bool
}

func GetFlags() Flags {
	flags, _ := Parse(flag.CommandLine, os.Args[1:])
	return flags
}

func Parse(fs *flag.FlagSet, args []string) (Flags, error) {
	configFileName := fs.String("c", "", "YAML config file (default none)")
	logFileName := fs.String("l", "dhcpreact.log", "log file")
	stateFileName := fs.String("s", "dhcpack_status.json", "device state file")
	ifaceName := fs.String("i", "", "interface name for pcap capture, e.g. eth0")
	listen := fs.String("a", "0.0.0.0:514", "syslog UDP listen address")
	renderConfig := fs.Bool("r", false, "render config and exit (default false)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	flags := Flags{RenderConfig: *renderConfig}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "c":
			flags.ConfigFileName = configFileName
		case "l":
			flags.LogFileName = logFileName
		case "s":
			flags.StateFileName = stateFileName
		case "i":
			flags.IfaceName = ifaceName
		case "a":
			flags.Listen = listen
		}
	})
	return flags, nil
}
