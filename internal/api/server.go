package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nikmy/txflow/internal/engine"
	"github.com/nikmy/txflow/internal/metrics"
	"github.com/nikmy/txflow/internal/queue"
	"github.com/nikmy/txflow/internal/store/sqlstore"
	"github.com/nikmy/txflow/internal/txn"
	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

const defaultRequestTimeout = 30 * time.Second

type Engine = engine.Engine[*sqlstore.Handle]

// Server returns from Serve once ctx is done; the caller then
// calls Shutdown to close open connections.
type Server interface {
	Serve(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// NewServer exposes e over HTTP. With m set, requests are measured
// and the registry behind gatherer is served on /metrics.
func NewServer(
	cfg Config,
	log logger.Logger,
	e *Engine,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) Server {
	serveLog := log.With("api_http_server")

	fiberCfg := fiber.Config{
		ReadTimeout:             cfg.HTTP.ReadTimeout,
		WriteTimeout:            cfg.HTTP.WriteTimeout,
		IdleTimeout:             cfg.HTTP.IdleTimeout,
		DisableStartupMessage:   true,
		EnableTrustedProxyCheck: len(cfg.Proxy.Trusted) != 0,
		ProxyHeader:             cfg.Proxy.Header,
		TrustedProxies:          cfg.Proxy.Trusted,
	}

	fiberCfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return sendError(c, fe.Code, fe.Message)
		}

		serveLog.Warn(errors.WrapFail(err, "handle http request"))
		return c.Status(http.StatusInternalServerError).Send(nil)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	s := &server{
		engine:  e,
		metrics: m,
		http:    fiber.New(fiberCfg),
		addr:    cfg.HTTP.Addr,
		timeout: timeout,
		log:     serveLog,
	}

	s.setupRoutes(gatherer)

	return s
}

type server struct {
	engine  *Engine
	metrics *metrics.Metrics
	http    *fiber.App
	addr    string
	timeout time.Duration
	log     logger.Logger
}

func (s *server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Listen(s.addr) }()

	s.log.Infof("listening on %s", s.addr)

	select {
	case err := <-errCh:
		return errors.WrapFail(err, "listen")
	case <-ctx.Done():
		return nil
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return errors.WrapFail(s.http.ShutdownWithContext(ctx), "shutdown http server")
}

func (s *server) setupRoutes(gatherer prometheus.Gatherer) {
	if s.metrics != nil {
		s.http.Use(s.measure)
		if gatherer != nil {
			s.http.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
		}
	}

	s.http.Post("/query", s.handleQuery)
	s.http.Post("/exec", s.handleExec)
	s.http.Delete("/txn", s.handleCancel)
	s.http.Get("/stats", s.handleStats)
}

func (s *server) measure(c *fiber.Ctx) error {
	started := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = http.StatusInternalServerError
	}

	s.metrics.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(started))
	return err
}

type statement struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args"`

	// Exec only.
	Atomic   bool   `json:"atomic"`
	Async    bool   `json:"async"`
	Name     string `json:"name"`
	Priority string `json:"priority"`
}

func (s *server) parseStatement(c *fiber.Ctx) (statement, error) {
	var st statement
	if err := c.BodyParser(&st); err != nil {
		s.log.Warn(errors.WrapFail(err, "parse statement"))
		return st, fiber.NewError(http.StatusBadRequest, "bad json")
	}
	if st.SQL == "" {
		return st, fiber.NewError(http.StatusBadRequest, "missing required field \"sql\"")
	}
	return st, nil
}

func (s *server) handleQuery(c *fiber.Ctx) error {
	st, err := s.parseStatement(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	q := sqlstore.Select[sqlstore.Row](sqlstore.ScanRow, st.SQL, st.Args...)
	rows, err := engine.Await(ctx, s.engine, txn.Queriable[*sqlstore.Handle, sqlstore.Row](q))
	if err != nil {
		return s.transactionError(err)
	}

	items := rows.Items()
	if items == nil {
		items = []sqlstore.Row{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"rows": items, "count": len(items)})
}

func (s *server) handleExec(c *fiber.Ctx) error {
	st, err := s.parseStatement(c)
	if err != nil {
		return err
	}

	priority, err := queue.ParsePriority(st.Priority)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	tx := txn.Transaction[*sqlstore.Handle](sqlstore.Exec(st.SQL, st.Args...))

	if st.Async {
		b := engine.Wrap(s.engine, tx).Named(st.Name)
		if st.Atomic {
			b.InTransaction()
		}

		id, err := s.engine.SubmitWithPriority(b.Build(), priority)
		if err != nil {
			return s.transactionError(err)
		}
		return c.Status(http.StatusAccepted).JSON(fiber.Map{"id": id.String()})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	if err := engine.Run(ctx, s.engine, tx, st.Atomic); err != nil {
		return s.transactionError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "OK"})
}

func (s *server) handleCancel(c *fiber.Ctx) error {
	if name := c.Query("name"); name != "" {
		return c.JSON(fiber.Map{"cancelled": s.engine.CancelName(name)})
	}

	raw := c.Query("id")
	if raw == "" {
		return fiber.NewError(http.StatusBadRequest, "missing required parameter \"id\" or \"name\"")
	}

	id, err := txn.ParseID(raw)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed \"id\"")
	}

	cancelled := 0
	if s.engine.Cancel(id) {
		cancelled = 1
	}
	return c.JSON(fiber.Map{"cancelled": cancelled})
}

func (s *server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.engine.Stats())
}

func (s *server) transactionError(err error) error {
	switch {
	case errors.Is(err, txn.ErrQueueClosed):
		return fiber.NewError(http.StatusServiceUnavailable, "engine is shutting down")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(http.StatusGatewayTimeout, "transaction did not finish in time")
	case errors.Is(err, txn.ErrDispatchFailure), errors.Is(err, txn.ErrPanicked):
		return err
	default:
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
}

func sendError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"status": "ERROR", "message": msg})
}
