// Package app wires the HTTP routes, middleware and background jobs
package app

import (
	"bitwise74/roleplay-api/app/password"
	"bitwise74/roleplay-api/app/request"
	"bitwise74/roleplay-api/app/root"
	"bitwise74/roleplay-api/app/session"
	"bitwise74/roleplay-api/app/table"
	"bitwise74/roleplay-api/app/user"
	"bitwise74/roleplay-api/db"
	"bitwise74/roleplay-api/internal"
	"bitwise74/roleplay-api/internal/service"
	"bitwise74/roleplay-api/pkg/middleware"
	"bitwise74/roleplay-api/pkg/security"
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	CORSOrigins []string
	RateLimit   int
	BodyLimit   int64
	Turnstile   middleware.TurnstileConfig
}

// App is a configured router together with the things that have to be
// shut down with it
type App struct {
	Router *gin.Engine
	Deps   *internal.Deps

	stop func()
}

// Close stops background jobs and closes the database
func (a *App) Close() {
	a.stop()
}

func handle(d *internal.Deps, h func(*gin.Context, *internal.Deps)) gin.HandlerFunc {
	return func(c *gin.Context) { h(c, d) }
}

// NewRouter builds the gin engine for d. Rate limiter eviction runs until
// ctx is done.
func NewRouter(ctx context.Context, d *internal.Deps, o *Options) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     o.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetUint("userID"); v != 0 {
					fields = append(fields, zap.Uint("user_id", v))
				}

				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
	)

	router.HandleMethodNotAllowed = true

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: o.RateLimit,
		Burst:             o.RateLimit * 2,
	})
	if o.RateLimit > 0 {
		go rateLimiter.Run(ctx)
	}

	auth := middleware.NewAuthMiddleware(d.DB, d.Sessions)
	turnstile := middleware.NewTurnstileMiddleware(o.Turnstile)

	m := router.Group("", rateLimiter.Middleware(), middleware.BodySizeLimiter(o.BodyLimit))

	// GET|HEAD /heartbeat		-> Used to check if the server is alive
	m.GET("/heartbeat", root.Heartbeat)
	m.HEAD("/heartbeat", root.Heartbeat)

	u := m.Group("/users")
	{
		// POST /users			-> Registers a new user
		u.POST("", turnstile, handle(d, user.UserRegister))

		// PUT /users/:id		-> Updates the caller's own account
		u.PUT("/:id", auth, handle(d, user.UserUpdate))
	}

	// POST /forgot-password		-> Mails a password reset link
	m.POST("/forgot-password", turnstile, handle(d, password.ForgotPassword))

	// POST /reset-password		-> Sets a new password using a reset token
	m.POST("/reset-password", handle(d, password.ResetPassword))

	s := m.Group("/sessions")
	{
		// POST /sessions		-> Logs in and returns a bearer token
		s.POST("", handle(d, session.SessionCreate))

		// DELETE /sessions		-> Revokes the current bearer token
		s.DELETE("", auth, handle(d, session.SessionDestroy))
	}

	t := m.Group("/tables", auth)
	{
		// GET /tables			-> Lists tables, filtered by ?user= and ?text=
		t.GET("", handle(d, table.TableList))

		// POST /tables			-> Creates a table
		t.POST("", handle(d, table.TableCreate))

		// PATCH /tables/:id		-> Updates a table (master only)
		t.PATCH("/:id", handle(d, table.TableUpdate))

		// DELETE /tables/:id		-> Deletes a table (master only)
		t.DELETE("/:id", handle(d, table.TableDelete))

		// DELETE /tables/:id/players/:playerId	-> Removes a player from a table
		t.DELETE("/:id/players/:playerId", handle(d, table.TableRemovePlayer))

		// GET /tables/:id/requests	-> Lists pending requests of ?master=
		t.GET("/:id/requests", handle(d, request.RequestList))

		// POST /tables/:id/requests	-> Asks to join a table
		t.POST("/:id/requests", handle(d, request.RequestCreate))

		// POST /tables/:id/requests/:requestId/accept	-> Accepts a join request
		t.POST("/:id/requests/:requestId/accept", handle(d, request.RequestAccept))

		// DELETE /tables/:id/requests/:requestId	-> Rejects a join request
		t.DELETE("/:id/requests/:requestId", handle(d, request.RequestReject))
	}

	return router
}

// New builds the whole application from the loaded config
func New() (*App, error) {
	conn, err := db.Open(viper.GetString("db.driver"), viper.GetString("db.dsn"))
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(conn); err != nil {
		return nil, err
	}

	d := &internal.Deps{
		DB:            conn,
		Argon:         security.NewArgonHash(),
		Sessions:      security.NewSessionIssuer(viper.GetString("jwt.secret"), viper.GetDuration("auth.token_ttl")),
		MailFrom:      viper.GetString("mail.from"),
		ResetTokenTTL: viper.GetDuration("auth.reset_token_ttl"),
	}

	if host := viper.GetString("mail.host"); host != "" {
		d.Mailer = service.NewSMTPMailer(service.SMTPConfig{
			Host:     host,
			Port:     viper.GetInt("mail.port"),
			Username: viper.GetString("mail.username"),
			Password: viper.GetString("mail.password"),
		})
	} else {
		zap.L().Warn("No mail.host configured, password reset mails will only be logged")
		d.Mailer = service.LogMailer{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	router := NewRouter(ctx, d, &Options{
		CORSOrigins: viper.GetStringSlice("host.cors_origins"),
		RateLimit:   viper.GetInt("security.rate_limit"),
		BodyLimit:   viper.GetInt64("security.body_limit"),
		Turnstile: middleware.TurnstileConfig{
			Enabled: viper.GetBool("cloudflare.turnstile.enabled"),
			Secret:  viper.GetString("cloudflare.turnstile.secret_token"),
		},
	})

	stops := []func(){cancel}

	if schedule := viper.GetString("cleanup.schedule"); schedule != "" {
		c, err := service.StartTokenCleanup(schedule, &service.TokenCleanup{
			DB:             conn,
			ResetRetention: viper.GetDuration("cleanup.reset_token_retention"),
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to schedule token cleanup, %w", err)
		}

		stops = append(stops, func() { <-c.Stop().Done() })
	}

	if !viper.GetBool("cloudflare.turnstile.enabled") {
		zap.L().Warn("Cloudflare's turnstile is disabled. Some public endpoints won't be guarded against bots")
	}

	return &App{
		Router: router,
		Deps:   d,
		stop: func() {
			for _, s := range stops {
				s()
			}

			if sqlDB, err := conn.DB(); err == nil {
				sqlDB.Close()
			}
		},
	}, nil
}
