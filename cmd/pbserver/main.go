// Command pbserver runs a local pb-compatible paste server, for trying the
// ptpb client without a remote instance.
package main

import (
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/tombowditch/ptpb/internal/config"
	"github.com/tombowditch/ptpb/internal/server/httpserver"
	"github.com/tombowditch/ptpb/internal/store"
)

var opts struct {
	Addr      string `long:"addr" description:"listen address (env PB_HTTP_ADDR)"`
	PublicURL string `long:"public-url" description:"url prefix for returned paste urls (env PB_PUBLIC_URL)"`
	Debug     bool   `long:"debug" description:"log at debug level"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		// flags printed the error for us
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	logger := logrus.New()
	if opts.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.LoadServer()
	if err != nil {
		logger.WithError(err).Fatal("could not load config")
	}
	if opts.Addr != "" {
		cfg.HTTPAddr = opts.Addr
	}
	if opts.PublicURL != "" {
		cfg.PublicURL = opts.PublicURL
	}

	var (
		s    store.Store
		hopt []httpserver.Option
	)
	if cfg.RedisURI != "" {
		rs, err := store.NewRedis(cfg.RedisURI, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Fatal("could not connect to redis")
		}
		defer rs.Close()
		logger.WithField("addr", cfg.RedisURI).Info("connected to redis")
		s = rs

		host, port := store.ParseRedisURI(cfg.RedisURI)
		limiter, err := httpserver.NewRedisLimiter(host, port, cfg.RedisPassword, config.WriteRateInterval)
		if err != nil {
			logger.WithError(err).Fatal("could not initialize rate limiter")
		}
		hopt = append(hopt, httpserver.WithLimiter(limiter))
	} else {
		logger.Info("using in-memory store")
		s = store.NewMemory()
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("starting http server")
	handler := httpserver.NewHandler(s, cfg.PublicURL, logger, hopt...)
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		logger.WithError(err).Fatal("http server failed")
	}
}
