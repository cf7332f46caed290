package exporter

import (
	"context"
	"fmt"

	"al.essio.dev/pkg/shellescape"
	"uranus/internal/downloader"
	"uranus/pkg/config"
	"uranus/pkg/logger"
)

// Dispatcher hands an artifact to whatever retrieves it into dir
type Dispatcher interface {
	Dispatch(ctx context.Context, dir string, a Artifact) error
}

// CommandBuilder renders the shell commands that retrieve an artifact
type CommandBuilder struct {
	tools config.ToolsConfig
}

// NewCommandBuilder creates a builder for the configured executables
func NewCommandBuilder(tools config.ToolsConfig) CommandBuilder {
	return CommandBuilder{tools: tools}
}

// Commands returns the commands for a, to be run in order in the destination directory.
//
//	video: <video_downloader> -o '<author>_<id>.%(ext)s' '<link>'
//	photo: <photo_fetcher> -O '<author>_<id>_<n>.jpg' -o /dev/null '<url>'
//	       <metadata_stamper> '-FileModifyDate=<created_at>' '<author>_<id>_<n>.jpg'
func (b CommandBuilder) Commands(a Artifact) []string {
	switch a.Kind {
	case KindVideo:
		return []string{fmt.Sprintf("%s -o %s %s",
			b.tools.VideoDownloader, shellescape.Quote(a.Name), shellescape.Quote(a.Source))}
	case KindPhoto:
		cmds := []string{fmt.Sprintf("%s -O %s -o /dev/null %s",
			b.tools.PhotoFetcher, shellescape.Quote(a.Name), shellescape.Quote(a.Source))}
		if a.CreatedAt != "" {
			cmds = append(cmds, fmt.Sprintf("%s %s %s",
				b.tools.MetadataStamper, shellescape.Quote("-FileModifyDate="+a.CreatedAt), shellescape.Quote(a.Name)))
		}
		return cmds
	default:
		return nil
	}
}

// CommandDispatcher runs artifact commands through the shell runner
type CommandDispatcher struct {
	runner  *downloader.Runner
	builder CommandBuilder
	logger  logger.Logger
}

// NewCommandDispatcher creates a dispatcher for the configured tools
func NewCommandDispatcher(tools config.ToolsConfig, log logger.Logger) *CommandDispatcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &CommandDispatcher{
		runner:  downloader.NewRunner(tools.Shell, log),
		builder: NewCommandBuilder(tools),
		logger:  log,
	}
}

// Dispatch runs the commands for a and waits for them to exit
func (d *CommandDispatcher) Dispatch(ctx context.Context, dir string, a Artifact) error {
	cmds := d.builder.Commands(a)
	if len(cmds) == 0 {
		return fmt.Errorf("no command for artifact kind %q", a.Kind)
	}
	for _, c := range cmds {
		logger.LogDispatch(d.logger, a.PostID, string(a.Kind), c)
	}

	res := d.runner.Run(ctx, downloader.Job{
		Dir:      dir,
		Commands: cmds,
		PostID:   a.PostID,
		Kind:     string(a.Kind),
		Artifact: a.Name,
	})
	return res.Error
}
