package main

import (
	"bitwise74/roleplay-api/app"
	"bitwise74/roleplay-api/config"
	"bitwise74/roleplay-api/db"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	if err := config.Setup(); err != nil {
		panic(err)
	}

	if err := app.MakeLogger(viper.GetString("app.log_level")); err != nil {
		panic(err)
	}

	if config.MigrateOnly() {
		conn, err := db.Open(viper.GetString("db.driver"), viper.GetString("db.dsn"))
		if err != nil {
			zap.L().Fatal("Failed to open database", zap.Error(err))
		}

		if err := db.Migrate(conn); err != nil {
			zap.L().Fatal("Failed to migrate database", zap.Error(err))
		}

		zap.L().Info("Database migrated")
		return
	}

	a, err := app.New()
	if err != nil {
		zap.L().Fatal("Failed to initialize app", zap.Error(err))
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		var err error
		if viper.GetBool("host.ssl.enabled") {
			err = srv.ListenAndServeTLS(viper.GetString("host.ssl.certificate_path"), viper.GetString("host.ssl.certificate_key_path"))
		} else {
			err = srv.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down server", zap.Error(err))
	}
}
