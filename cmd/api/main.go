package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adactor "github.com/berfenger/ecovolter2mqtt/internal/adapter/actor"
	"github.com/berfenger/ecovolter2mqtt/internal/config"
	"github.com/berfenger/ecovolter2mqtt/internal/core/actor"
	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/core/service"
	"github.com/berfenger/ecovolter2mqtt/internal/server"
	"github.com/berfenger/ecovolter2mqtt/internal/util/actorutil"
	"github.com/berfenger/ecovolter2mqtt/pkg/ecovolter"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")

	// in-flight requests get a few seconds, a pending write may still be lost
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	// init charger actor provider
	chargerProv, err := chargerActorProvider(cfg, logger)
	if err != nil {
		logger.Fatal("charger setup failed", zap.String("serial", cfg.Charger.SerialNumber), zap.Error(err))
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, chargerProv, mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		logger.Fatal("could not spawn master actor", zap.Error(err))
	}

	apiServer := server.NewServer(*cfg, ctx, pid)
	done := make(chan bool, 1)

	go gracefulShutdown(apiServer, logger, done)

	logger.Info("listening", zap.String("addr", apiServer.Addr))
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server error", zap.Error(err))
	}

	<-done

	// children stop first, so the bridge goes offline on the broker
	if err := ctx.StopFuture(pid).Wait(); err != nil {
		logger.Warn("master actor did not stop cleanly", zap.Error(err))
	}
	as.Shutdown()
	logger.Info("graceful shutdown complete")
}

func initConfig() (*config.Config, error) {

	// alias PORT => ECOVOLTER_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("ECOVOLTER_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("ecovolter")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check charger params
	if err := cfg.Charger.Normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func chargerActorProvider(cfg *config.Config, logger *zap.Logger) (actor.ChargerActorProvider, error) {

	var opts []ecovolter.OptionFunc
	if cfg.Charger.BaseURI != "" {
		opts = append(opts, ecovolter.WithBaseURI(cfg.Charger.BaseURI))
	}
	opts = append(opts, ecovolter.WithLogger(logger))

	client, err := ecovolter.NewClient(cfg.Charger.SerialNumber, cfg.Charger.SecretKey, opts...)
	if err != nil {
		return nil, err
	}

	// fail fast on bad credentials, tolerate an unreachable charger
	ctx, cancel := context.WithTimeout(context.Background(), ecovolter.DEFAULT_TIMEOUT)
	defer cancel()
	if err := client.Probe(ctx); err != nil {
		if ecovolter.IsAuthentication(err) {
			return nil, err
		}
		logger.Warn("charger not reachable at startup", zap.String("url", client.URL(ecovolter.ENDPOINT_STATUS)), zap.Error(err))
	}

	registry, err := service.NewPointRegistry(domain.ChargerPoints(), logger)
	if err != nil {
		return nil, err
	}

	return func(es *eventstream.EventStream) *adactor.ChargerActor {
		return adactor.NewChargerActor(client.Serial(), client, registry, es, logger)
	}, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("charger.serial_number", "")
	viper.SetDefault("charger.secret_key", "")
	viper.SetDefault("charger.base_uri", "")
	viper.SetDefault("charger.update_interval", config.DEFAULT_UPDATE_INTERVAL_SECONDS)
	viper.SetDefault("mqtt.host", "localhost")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.ha_discovery_enable", true)
	viper.SetDefault("mqtt.base_topic", "ecovolter")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("port", 8080)
	viper.SetDefault("http_log", false)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	cfg.Charger.SecretKey = "*redacted*"
	slog.Info("Using", "config", cfg)
}
