package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gamestory/internal/observability"
	"github.com/Sumatoshi-tech/gamestory/internal/server"
	"github.com/Sumatoshi-tech/gamestory/pkg/render"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

const (
	serveCmdUse    = "serve [games.csv]"
	serveCmdShort  = "Serve the interactive story over HTTP"
	serveAddrUsage = "listen address host:port (default server.host:server.port)"
)

type serveOptions struct {
	*rootOptions

	addr  string
	theme string
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   serveCmdUse,
		Short: serveCmdShort,
		Long: `Serve loads the dataset, enters the overview, and serves the story.
Every navigation request goes through one scene navigator, so requests
are applied one at a time.

Routes:
  GET /                    overview page
  GET /scene/{id}          enter a scene and render the page
  GET /annotation/{year}   follow an overview marker
  GET /api/state           active scene and board contents
  GET /api/scenes/{id}     aggregated series for a scene
  GET /healthz, /readyz    liveness and readiness
  GET /metrics             Prometheus metrics (server.metrics)`,
		Args: cobra.MaximumNArgs(maxDatasetArgs),
		RunE: opts.run,
	}

	cmd.Flags().StringVar(&opts.addr, addrFlag, "", serveAddrUsage)
	cmd.Flags().StringVar(&opts.theme, themeFlag, "", renderThemeUsage)

	return cmd
}

func (o *serveOptions) run(cmd *cobra.Command, args []string) error {
	sess, err := o.openSession(cmd, observability.ModeServe, args)
	if err != nil {
		return err
	}
	defer sess.close(cmd.Context())

	if o.theme != "" {
		sess.cfg.Render.Theme = o.theme
	}

	theme, err := sess.cfg.Theme()
	if err != nil {
		return err
	}

	red, err := observability.NewREDMetrics(sess.providers.Meter)
	if err != nil {
		return err
	}

	entries, err := observability.NewSceneMetrics(sess.providers.Meter)
	if err != nil {
		return err
	}

	labels := sess.story.AnnotationLabels()
	board := render.NewBoard(sess.story,
		render.WithTheme(theme),
		render.WithLinks(render.RouteLinks{}),
		render.WithLogger(sess.logger),
	)
	nav := scene.NewNavigator(sess.records(), board, board,
		scene.WithLogger(sess.logger),
		scene.WithTracer(sess.providers.Tracer),
		scene.WithAnnotationLabels(labels),
		scene.WithEntryObserver(entries.Observe),
	)

	ctx := cmd.Context()

	_, err = nav.Start(ctx)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	serverOpts := []server.Option{
		server.WithLogger(sess.logger),
		server.WithTracer(sess.providers.Tracer),
		server.WithREDMetrics(red),
		server.WithAnnotationLabels(labels),
	}

	if sess.providers.MetricsHandler != nil {
		serverOpts = append(serverOpts, server.WithMetricsHandler(sess.providers.MetricsHandler))
	}

	srv := server.New(nav, board, sess.records(), serverOpts...)

	addr := o.addr
	if addr == "" {
		addr = sess.cfg.Addr()
	}

	return srv.ListenAndServe(ctx, addr, server.Timeouts{
		Read:  sess.cfg.Server.ReadTimeout,
		Write: sess.cfg.Server.WriteTimeout,
		Idle:  sess.cfg.Server.IdleTimeout,
	})
}
