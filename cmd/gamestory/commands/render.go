package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gamestory/internal/observability"
	"github.com/Sumatoshi-tech/gamestory/pkg/plotpage"
	"github.com/Sumatoshi-tech/gamestory/pkg/render"
	"github.com/Sumatoshi-tech/gamestory/pkg/scene"
)

const (
	renderCmdUse      = "render [games.csv]"
	renderCmdShort    = "Render every scene of the story as static HTML pages"
	renderOutputUsage = "output directory for HTML files (default render.output_dir)"
	renderThemeUsage  = "page theme: light or dark (default render.theme)"
)

type renderOptions struct {
	*rootOptions

	outputDir string
	theme     string
}

func newRenderCommand(root *rootOptions) *cobra.Command {
	opts := &renderOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Long: `Render enters every scene in turn and writes <scene>.html for each,
plus index.html for the overview. Overview markers link to the
comparison pages.`,
		Args: cobra.MaximumNArgs(maxDatasetArgs),
		RunE: opts.run,
	}

	cmd.Flags().StringVarP(&opts.outputDir, outputFlag, outputShort, "", renderOutputUsage)
	cmd.Flags().StringVar(&opts.theme, themeFlag, "", renderThemeUsage)

	return cmd
}

func (o *renderOptions) run(cmd *cobra.Command, args []string) error {
	sess, err := o.openSession(cmd, observability.ModeCLI, args)
	if err != nil {
		return err
	}
	defer sess.close(cmd.Context())

	if o.outputDir != "" {
		sess.cfg.Render.OutputDir = o.outputDir
	}

	if o.theme != "" {
		sess.cfg.Render.Theme = o.theme
	}

	theme, err := sess.cfg.Theme()
	if err != nil {
		return err
	}

	board := render.NewBoard(sess.story,
		render.WithTheme(theme),
		render.WithLinks(render.FileLinks{}),
		render.WithLogger(sess.logger),
	)
	nav := scene.NewNavigator(sess.records(), board, board,
		scene.WithLogger(sess.logger),
		scene.WithTracer(sess.providers.Tracer),
		scene.WithAnnotationLabels(sess.story.AnnotationLabels()),
	)

	ctx := cmd.Context()

	_, err = nav.Start(ctx)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	pages := &plotpage.MultiPageRenderer{OutputDir: sess.cfg.Render.OutputDir, Theme: theme}
	out := cmd.OutOrStdout()

	for _, sc := range scene.All() {
		err = nav.Do(ctx, scene.Select(sc), func(scene.Frame) error {
			page := board.Page()

			path, renderErr := pages.RenderPage(sc.ID(), page)
			if renderErr != nil {
				return renderErr
			}

			fmt.Fprintln(out, path)

			if sc != scene.Overview {
				return nil
			}

			path, renderErr = pages.RenderIndex(page)
			if renderErr != nil {
				return renderErr
			}

			fmt.Fprintln(out, path)

			return nil
		})
		if err != nil {
			return fmt.Errorf("render %s: %w", sc, err)
		}
	}

	return nil
}
