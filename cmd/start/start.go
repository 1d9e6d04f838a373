package start

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/caesium-cloud/lgflow/api"
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/api/rest/service/user"
	"github.com/caesium-cloud/lgflow/internal/event"
	"github.com/caesium-cloud/lgflow/internal/metrics"
	"github.com/caesium-cloud/lgflow/internal/runtime"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/caesium-cloud/lgflow/pkg/log"
	"github.com/spf13/cobra"
)

const (
	usage   = "start"
	short   = "Start an lgflow API instance"
	long    = "This command starts an lgflow API instance serving the task workflow"
	example = "lgflow start"
)

var (
	// Cmd is the start command.
	Cmd = &cobra.Command{
		Use:        usage,
		Short:      short,
		Long:       long,
		Aliases:    []string{"s"},
		SuggestFor: []string{"launch", "boot", "up", "run", "serve"},
		Example:    example,
		RunE:       start,
	}
)

func start(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)

	go func() {
		for s := range signalChan {
			switch s {
			case syscall.SIGUSR1:
				log.Info("dumping stack traces due to SIGUSR1 signal")
				if profile := pprof.Lookup("goroutine"); profile != nil {
					if err := profile.WriteTo(os.Stdout, 1); err != nil {
						log.Error("write goroutine profile", "error", err)
					}
				}
			case syscall.SIGINT, syscall.SIGTERM:
				log.Info("gracefully shutting down", "signal", s.String())
				cancel()
			}
		}
	}()

	signal.Notify(signalChan, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	vars := env.Variables()

	log.Info("wiring components", "store", vars.Store, "concurrency", vars.Concurrency, "directory", vars.Directory)
	rt, err := runtime.Build(ctx, vars)
	if err != nil {
		log.Fatal("runtime configuration failure", "error", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Error("runtime close failure", "error", err)
		}
	}()

	metrics.Register()

	bus := event.New()
	task.Configure(&task.Backend{
		Repo:      rt.Repo,
		Engine:    rt.Engine,
		Directory: rt.Directory,
		Bus:       bus,
	})
	user.Configure(rt.Directory)

	bk, err := runtime.BuildBackup(vars, rt.Store)
	if err != nil {
		log.Fatal("backup configuration failure", "error", err)
	}
	if bk != nil {
		go bk.Listen(ctx)
	}

	log.Info("spinning up api")
	return api.Start(ctx, bus)
}
