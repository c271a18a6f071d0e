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

package config

import (
	"gopkg.in/yaml.v3"

	"github.com/audiokit/mediaclock/pkg/errors"
	"github.com/audiokit/mediaclock/pkg/logger"
)

const (
	defaultLatencyUsecs   = 160000
	defaultFrameUsecs     = 20000
	defaultSampleRate     = 48000
	defaultFrameSize      = 4
	defaultReportUsecs    = 1000000
	defaultPrometheusPort = 9037
	defaultHealthPort     = 8037
)

type Config struct {
	Name    string         `yaml:"name"` // instance name, used as a metric label
	Logging *LoggingConfig `yaml:"logging"`

	LatencyUsecs int64 `yaml:"latency_usecs"` // end-to-end fifo latency
	FrameUsecs   int64 `yaml:"frame_usecs"`   // playable duration per buffer post
	SampleRate   int64 `yaml:"sample_rate"`
	FrameSize    int64 `yaml:"frame_size"` // bytes per pcm frame
	ReportUsecs  int64 `yaml:"report_usecs"`

	PrometheusPort int `yaml:"prometheus_port"`
	HealthPort     int `yaml:"health_port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func NewConfig(confString string) (*Config, error) {
	conf := &Config{
		Name: "mediaclock",
		Logging: &LoggingConfig{
			Level: "info",
		},
	}
	if confString != "" {
		if err := yaml.Unmarshal([]byte(confString), conf); err != nil {
			return nil, errors.ErrCouldNotParseConfig(err)
		}
	}

	// ensure timing parameters are positive
	if conf.LatencyUsecs <= 0 {
		conf.LatencyUsecs = defaultLatencyUsecs
	}
	if conf.FrameUsecs <= 0 {
		conf.FrameUsecs = defaultFrameUsecs
	}
	if conf.SampleRate <= 0 {
		conf.SampleRate = defaultSampleRate
	}
	if conf.FrameSize <= 0 {
		conf.FrameSize = defaultFrameSize
	}
	if conf.ReportUsecs <= 0 {
		conf.ReportUsecs = defaultReportUsecs
	}
	if conf.PrometheusPort <= 0 {
		conf.PrometheusPort = defaultPrometheusPort
	}
	if conf.HealthPort <= 0 {
		conf.HealthPort = defaultHealthPort
	}

	return conf, nil
}

func (c *Config) InitLogger() {
	if c.Logging.File != "" {
		logger.InitWithFile(c.Logging.Level, c.Logging.File)
	} else {
		logger.Init(c.Logging.Level)
	}
}
