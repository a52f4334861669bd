// Package inspect implements 'robin inspect'.
// The controller collects the findings of one file, formats them and relays
// them to the assistant, or prints them in a dry run. It is the only layer
// that turns errors into notices for the user; the packages below it return
// typed errors. Only one request runs at a time.
package inspect

import (
	"context"
	"io"
	"sync"

	"github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"
	"github.com/vivant/robin/pkg/finding"
	"github.com/vivant/robin/pkg/relay"
	"github.com/vivant/robin/pkg/sink"
)

type Collector interface {
	Collect(ctx context.Context, logE *logrus.Entry, path string) (finding.Report, error)
}

type Relayer interface {
	Name() string
	Run(ctx context.Context, logE *logrus.Entry, input string, snk sink.Sink) (*relay.Session, error)
	CheckVersion(ctx context.Context, constraint string) (*version.Version, error)
}

type Controller struct {
	collector Collector
	relay     Relayer
	sink      sink.Sink
	param     *Param
	mu        sync.Mutex
}

type Param struct {
	DryRun     bool
	Format     string
	MinVersion string
	Stdout     io.Writer
}

func New(collector Collector, relay Relayer, snk sink.Sink, param *Param) *Controller {
	return &Controller{
		collector: collector,
		relay:     relay,
		sink:      snk,
		param:     param,
	}
}
