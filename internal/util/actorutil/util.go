package actorutil

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel, zap.PanicLevel, zap.FatalLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
			NoColor:    true,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedMQTTCommandToCommand maps an MQTT command into a point write for the
// charger actor.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	var value any
	payload := strings.TrimSpace(cmd.Payload)
	switch cmd.Command {
	case mqtt.COMMAND_SWITCH:
		switch strings.ToLower(payload) {
		case mqtt.MQTT_PAYLOAD_ON:
			value = true
		case mqtt.MQTT_PAYLOAD_OFF:
			value = false
		default:
			return nil, errors.New("invalid switch payload")
		}
	case mqtt.COMMAND_NUMBER:
		f, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return nil, err
		}
		value = f
	case mqtt.COMMAND_SELECT:
		if payload == "" {
			return nil, errors.New("empty select option")
		}
		value = payload
	case mqtt.COMMAND_REFRESH:
		return domain.RefreshRequest{Reason: "mqtt"}, nil
	default:
		return nil, nil
	}
	return domain.WritePointRequest{
		PointId: cmd.DeviceId,
		Value:   value,
	}, nil
}
