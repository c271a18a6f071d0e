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
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/audiokit/mediaclock/pkg/config"
	"github.com/audiokit/mediaclock/pkg/interpolator"
	"github.com/audiokit/mediaclock/pkg/logger"
)

type statusHandler struct {
	interp *interpolator.Interpolator
}

func (h *statusHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"state":%q,"streamUsecs":%d,"readPointer":%d,"queued":%d}`,
		h.interp.State().String(),
		h.interp.GetStreamUsecs(),
		h.interp.ReadPointer(),
		h.interp.UsecsQueued(),
	)
}

func startHTTP(conf *config.Config, interp *interpolator.Interpolator) {
	promMux := http.NewServeMux()
	promMux.Handle("/metrics", promhttp.Handler())
	promServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.PrometheusPort),
		Handler: promMux,
	}

	healthMux := http.NewServeMux()
	healthMux.Handle("/status", &statusHandler{interp: interp})
	healthMux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.HealthPort),
		Handler: healthMux,
	}

	go func() {
		if err := promServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("prometheus server failed", err)
		}
	}()
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("health server failed", err)
		}
	}()
}
