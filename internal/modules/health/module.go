package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"

	"smc_bot/internal/modules/config"
	"smc_bot/internal/runner"
)

// порог тишины стрима, после которого readiness считается потерянной
const staleTickAfter = 5 * time.Minute

func NewMux(m *runner.Manager) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: сканер запущен и стрим не молчит
		st := m.Status()
		if st.StartedAt.IsZero() || st.LastTick.IsZero() || time.Since(st.LastTick) > staleTickAfter {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		st := m.Status()
		resp := map[string]any{
			"symbols":     st.Symbols,
			"signalsSent": st.SignalsSent,
			"uptimeSec": func() int64 {
				if st.StartedAt.IsZero() {
					return 0
				}
				return int64(time.Since(st.StartedAt).Seconds())
			}(),
			"lastTickUnix": func() int64 {
				if st.LastTick.IsZero() {
					return 0
				}
				return st.LastTick.Unix()
			}(),
			"lastSignalUnix": func() int64 {
				if st.LastSignal.IsZero() {
					return 0
				}
				return st.LastSignal.Unix()
			}(),
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := sonic.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(b)
	})

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg *config.Config, mux *http.ServeMux) {
	srv := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.HealthAddr)
			if err != nil {
				return err
			}
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
