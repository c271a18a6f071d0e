// Copyright 2026 Audiokit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/audiokit/mediaclock/pkg/clock"
	"github.com/audiokit/mediaclock/pkg/config"
	"github.com/audiokit/mediaclock/pkg/feeder"
	"github.com/audiokit/mediaclock/pkg/interpolator"
	"github.com/audiokit/mediaclock/pkg/logger"
	"github.com/audiokit/mediaclock/pkg/stats"
	"github.com/audiokit/mediaclock/version"
)

func main() {
	cmd := &cli.Command{
		Name:        "mediaclock",
		Usage:       "FIFO media clock interpolator",
		Version:     version.Version,
		Description: "runs a paced writer against the interpolated media clock and exports its health",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "mediaclock yaml config file",
				Sources: cli.EnvVars("MEDIACLOCK_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config-body",
				Usage:   "mediaclock yaml config body",
				Sources: cli.EnvVars("MEDIACLOCK_CONFIG_BODY"),
			},
		},
		Action: runClock,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runClock(_ context.Context, c *cli.Command) error {
	configFile := c.String("config")
	configBody := c.String("config-body")
	if configBody == "" && configFile != "" {
		content, err := os.ReadFile(configFile)
		if err != nil {
			return err
		}
		configBody = string(content)
	}

	conf, err := config.NewConfig(configBody)
	if err != nil {
		return err
	}
	conf.InitLogger()

	monitor := stats.NewMonitor(conf.Name)
	clk := clock.NewSystemClock()
	interp := interpolator.New(
		interpolator.WithClock(clk),
		interpolator.WithLatency(conf.LatencyUsecs),
		interpolator.WithObserver(monitor),
	)
	fd := feeder.New(interp, clk, conf.FrameUsecs)

	startHTTP(conf, interp)

	logger.Infow("starting mediaclock",
		"version", version.Version,
		"name", conf.Name,
		"latencyUsecs", conf.LatencyUsecs,
		"frameUsecs", conf.FrameUsecs,
	)
	fd.Start()

	sampleDone := make(chan struct{})
	go sample(interp, monitor, conf, sampleDone)

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
	sig := <-stopChan
	logger.Infow("exit requested", "signal", sig)

	close(sampleDone)
	fd.Stop()
	return nil
}

// sample periodically reads the interpolated position for the metrics
// endpoint and debug logs
func sample(interp *interpolator.Interpolator, monitor *stats.Monitor, conf *config.Config, done chan struct{}) {
	t := time.NewTicker(time.Duration(conf.ReportUsecs) * time.Microsecond)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			pos := interp.GetStreamUsecs()
			monitor.RecordPosition(pos)
			logger.Debugw("stream position",
				"usecs", pos,
				"state", interp.State().String(),
				"readPointer", interp.ReadPointer(),
			)
		case <-done:
			return
		}
	}
}
