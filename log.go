package main

import (
	"os"

	"github.com/coreos/pkg/capnslog"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/sponge", "main")

func setupLogging(level string) error {
	capnslog.SetFormatter(capnslog.NewPrettyFormatter(os.Stderr, false))

	lvl, err := capnslog.ParseLevel(level)
	if err != nil {
		return err
	}
	capnslog.SetGlobalLogLevel(lvl)

	return nil
}
