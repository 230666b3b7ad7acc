package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/jugnunagar/folio/internal/posts"
	"github.com/jugnunagar/folio/internal/storage"
	amqp "github.com/rabbitmq/amqp091-go"
)

// HealthDeps lists what the health check covers. Nil or empty fields are reported
// as skipped.
type HealthDeps struct {
	Store       *posts.CollectionStore
	DB          *sql.DB
	Storage     storage.Storage
	RabbitMQURL string
}

const checkTimeout = 5 * time.Second

type healthResponse struct {
	OK     bool              `json:"ok"`
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// depCheck is one dependency check. A failing critical check makes the service
// unhealthy; any other failure only degrades it.
type depCheck struct {
	name     string
	critical bool
	run      func(ctx context.Context) error
}

func (d *HealthDeps) depChecks() []depCheck {
	var ps []depCheck
	if d.Store != nil {
		ps = append(ps, depCheck{"store", true, func(ctx context.Context) error {
			_, _, err := d.Store.Snapshot(ctx)
			return err
		}})
	}
	if d.DB != nil {
		ps = append(ps, depCheck{"db", true, d.DB.PingContext})
	}
	if d.Storage != nil {
		ps = append(ps, depCheck{"s3", false, func(ctx context.Context) error {
			_, err := d.Storage.Exists(ctx, "__health__")
			return err
		}})
	}
	if d.RabbitMQURL != "" {
		ps = append(ps, depCheck{"rabbitmq", false, func(ctx context.Context) error {
			return dialBroker(ctx, d.RabbitMQURL)
		}})
	}
	return ps
}

// dialBroker opens and closes one connection, bounded by ctx's deadline.
func dialBroker(ctx context.Context, url string) error {
	timeout := checkTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return err
	}
	return conn.Close()
}

func Health(deps *HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		checks := map[string]string{"store": "skipped", "db": "skipped", "s3": "skipped", "rabbitmq": "skipped"}
		status := "healthy"
		for _, p := range deps.depChecks() {
			if err := p.run(ctx); err != nil {
				checks[p.name] = "unhealthy"
				switch {
				case p.critical:
					status = "unhealthy"
				case status == "healthy":
					status = "degraded"
				}
				continue
			}
			checks[p.name] = "ok"
		}

		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, healthResponse{OK: status != "unhealthy", Status: status, Checks: checks})
	}
}
