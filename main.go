package main

import (
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coachdesk/playlog/internal/auth"
	"github.com/coachdesk/playlog/internal/config"
	"github.com/coachdesk/playlog/internal/db"
	"github.com/coachdesk/playlog/internal/matches"
	"github.com/coachdesk/playlog/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	gin.SetMode(cfg.GinMode)

	gdb, err := db.Open(cfg.DBPath)
	if err != nil {
		logrus.Fatalf("open db: %v", err)
	}

	r := gin.Default()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logrus.Fatalf("trusted proxies: %v", err)
	}

	authRepo := auth.NewRepository(gdb)
	auth.RegisterRoutes(r, authRepo, auth.Options{
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.SecureCookie,
	})
	matches.RegisterRoutes(r, matches.NewRepository(gdb),
		auth.RequireAuth(authRepo), auth.RequireStaff())
	stats.RegisterRoutes(r, stats.NewService(gdb), auth.RequireAuth(authRepo))

	logrus.Infof("listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		logrus.Fatal(err)
	}
}
