package main

import (
	"flag"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"SevaFlow/bot/flow"
	"SevaFlow/bot/whatsapp"
	"SevaFlow/impl/core"
	"SevaFlow/internal/cache"
	"SevaFlow/internal/config"
	repository "SevaFlow/internal/database"
	"SevaFlow/internal/http-server/api"
	"SevaFlow/internal/lib/logger"
	"SevaFlow/internal/lib/sl"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting sevaflow", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg)
	handler.SetHelpDefault(conf.Engine.HelpMessage)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}

	var flowSource flow.FlowSource
	if db != nil {
		handler.SetRepository(db)
		flowSource = db
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	if conf.Redis.Enabled && db != nil {
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Address,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		flowCache := cache.NewFlowCache(db, client, time.Duration(conf.Redis.FlowTTLSec)*time.Second, lg)
		handler.SetFlowCache(flowCache)
		flowSource = flowCache
		lg.With(
			slog.String("address", conf.Redis.Address),
		).Info("redis flow cache initialized")
	}

	sender := whatsapp.NewSender(conf.WhatsApp.GraphURL, lg)
	handler.SetSender(sender)

	if db != nil {
		issuer := flow.NewIssuer(db)
		handler.SetIssuer(issuer)

		interp := flow.NewInterpolator(conf.Engine.CompanyName)
		renderer := flow.NewRenderer(interp, db)
		recorder := flow.NewRecorder(db, issuer, db)
		invoker := flow.NewHTTPInvoker(time.Duration(conf.Engine.ActionTimeout)*time.Second, interp, lg)

		engine := flow.NewEngine(flowSource, db, renderer, recorder, invoker, conf.Engine.MaxTransitions, lg)
		handler.SetEngine(engine)
		lg.Info("flow engine initialized")
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
