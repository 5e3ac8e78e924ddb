package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	_ "github.com/lib/pq"
	nats "github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Procodx/familyGuardian/config"
	"github.com/Procodx/familyGuardian/pkg/api"
	"github.com/Procodx/familyGuardian/pkg/escalation"
	"github.com/Procodx/familyGuardian/pkg/model"
	"github.com/Procodx/familyGuardian/pkg/notify"
	"github.com/Procodx/familyGuardian/pkg/presence"
	"github.com/Procodx/familyGuardian/pkg/realtime"
	"github.com/Procodx/familyGuardian/pkg/storage"
	"github.com/Procodx/familyGuardian/pkg/storage/memory"
	"github.com/Procodx/familyGuardian/pkg/storage/postgres"
)

type engineServer struct {
	c *config.Config

	quitCh chan bool
	doneCh chan bool

	nc       *nats.Conn
	db       *sqlx.DB
	hub      *realtime.Hub
	workflow *escalation.Workflow
}

func init() {
	formatter := &logrus.TextFormatter{
		FullTimestamp: true,
	}
	logrus.SetFormatter(formatter)

	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)

	log.SetLevel(log.InfoLevel)
}

func newEngineServer(c *config.Config) (*engineServer, error) {
	s := &engineServer{
		c:      c,
		quitCh: make(chan bool),
		doneCh: make(chan bool),
	}

	if c.NATSServerURL != "" {
		nc, err := nats.Connect(c.NATSServerURL,
			nats.DrainTimeout(10*time.Second),
			nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
				log.Error("nats error: ", err)
			}),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Warn("nats disconnected: ", err)
				syscall.Kill(syscall.Getpid(), syscall.SIGINT)
			}))
		if err != nil {
			return nil, err
		}
		s.nc = nc
	}

	return s, nil
}

func (s *engineServer) openStore() (storage.Interface, error) {
	if s.c.DatabaseURL == "" {
		log.Warn("No DATABASE_URL configured, using the volatile in-memory store")
		return memory.NewStore(), nil
	}

	db, err := sqlx.Connect("postgres", s.c.DatabaseURL)
	if err != nil {
		return nil, err
	}
	s.db = db

	return postgres.NewStore(db), nil
}

// seedAdminOperator creates the bootstrap operator account from the
// environment. An existing account is left untouched.
func (s *engineServer) seedAdminOperator(store storage.Interface) {
	if s.c.AdminEmail == "" || s.c.AdminPasswordHash == "" {
		return
	}

	err := store.Operators().Create(&model.Operator{
		Email:        s.c.AdminEmail,
		PasswordHash: s.c.AdminPasswordHash,
		Role:         "admin",
	})
	if err != nil && err != storage.ErrConflict {
		log.Error("failed to seed admin operator: ", err)
		return
	}
	if err == nil {
		log.Infof("seeded admin operator '%s'", s.c.AdminEmail)
	}
}

func (s *engineServer) Serve() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(logger())

	store, err := s.openStore()
	if err != nil {
		log.Error("failed to open the storage backend: ", err)
		os.Exit(1)
	}
	s.seedAdminOperator(store)

	// Wire the engine components
	s.hub = realtime.NewHub()
	bus := realtime.NewBus(s.hub, s.nc)
	registry := presence.NewRegistry(store.Devices(), bus)
	directory := escalation.NewStoreDirectory(store.Contacts())
	notifier := notify.NewSMSProvider(s.c.SMSAPIKey, s.c.SMSBaseURL, s.c.SMSSenderID)
	s.workflow = escalation.NewWorkflow(store, registry, directory, notifier, bus, escalation.Config{
		FallbackNumber: s.c.AlertFallbackNumber,
	})
	ctrl := realtime.NewController(store, registry, s.workflow, s.hub, realtime.Config{
		OperatorSecret:           s.c.JWTSecret,
		SessionTimeout:           s.c.SessionTimeout,
		OfflineOverridesCritical: s.c.OfflineOverridesCritical,
	})

	// Register realtime endpoint
	realtimeHandler := realtime.NewHandler(ctrl)
	realtimeHandler.RegisterRoutes(e)

	// Register API endpoints
	apiHandler := api.NewHandler(s.nc, store, s.hub, s.workflow, api.Config{
		JWTSecret: s.c.JWTSecret,
	})
	apiHandler.RegisterRoutes(e)

	go func() {
		log.WithFields(log.Fields{
			"host": s.c.BindHost,
			"port": s.c.BindPort,
		}).Info("Starting server")

		if err := e.Start(fmt.Sprintf("%s:%d", s.c.BindHost, s.c.BindPort)); err != nil {
			e.Logger.Info("Shutting down the server")
		}
	}()

	// Wait until receiving the quit signal
	<-s.quitCh
	log.Info("Shutdown signal received")

	// Create a 10 second timeout context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the echo web server
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}

	// Terminate the live realtime sessions and wait for in-flight
	// notification fan-outs to settle.
	s.hub.CloseAll()
	s.workflow.Wait()

	if s.db != nil {
		s.db.Close()
	}

	// We've done!
	s.doneCh <- true
}

// Logger returns a middleware that logs HTTP requests.
func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			var err error
			if err = next(c); err != nil {
				c.Error(err)
			}
			stop := time.Now()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}
			reqSizeStr := req.Header.Get(echo.HeaderContentLength)
			if reqSizeStr == "" {
				reqSizeStr = "0"
			}
			reqSize, err := strconv.ParseInt(reqSizeStr, 10, 0)
			if err != nil {
				reqSize = -1
			}
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			}

			log.WithFields(log.Fields{
				"timestamp":     stop.Format(time.RFC3339),
				"id":            id,
				"remote_ip":     c.RealIP(),
				"host":          req.Host,
				"method":        req.Method,
				"uri":           req.RequestURI,
				"protocol":      req.Proto,
				"user_agent":    req.UserAgent(),
				"status":        res.Status,
				"status_text":   http.StatusText(res.Status),
				"referer":       req.Referer(),
				"error":         errMsg,
				"bytes_in":      reqSize,
				"bytes_out":     res.Size,
				"latency":       stop.Sub(start).Nanoseconds(),
				"latency_human": stop.Sub(start).String(),
			}).Infof("%s %s %s %d %s", req.Method, req.RequestURI, req.Proto,
				res.Status, strconv.FormatInt(res.Size, 10))

			return err
		}
	}
}

func (s *engineServer) Shutdown() {
	if s.nc != nil {
		s.nc.Drain()
	}

	// Send the quit signal to the server.Serve() routine
	s.quitCh <- true

	// Wait up to 10 seconds
	select {
	case <-s.doneCh:
		log.Info("Shutdown server successful")
	case <-time.After(10 * time.Second):
		log.Error("Shutdown server failed")
	}
}

func RunServeEngine(c *config.Config) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		s, err := newEngineServer(c)
		if err != nil {
			log.Error("failed to create new server instance: ", err)
			os.Exit(1)
		}

		go s.Serve()

		// Wait for interrupt signal to gracefully shutdown the server
		quitCh := make(chan os.Signal, 1)
		signal.Notify(quitCh, os.Interrupt)
		<-quitCh

		// Shutdown the server
		s.Shutdown()
	}
}
