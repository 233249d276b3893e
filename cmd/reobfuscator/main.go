package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/chargemap/internal/bootstrap"
	"github.com/samirrijal/chargemap/internal/pkg/config"
	"github.com/samirrijal/chargemap/internal/pkg/logging"
	"github.com/samirrijal/chargemap/internal/workflows"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: reobfuscator <worker|start>")
	}

	cfg, err := config.Load("chargemap-reobfuscator")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(logger),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	switch os.Args[1] {
	case "worker":
		runWorker(c, cfg)
	case "start":
		start(c, cfg)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runWorker(c client.Client, cfg *config.Config) {
	backends, err := bootstrap.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("backends: %v", err)
	}
	defer backends.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: 16,
	})
	w.RegisterWorkflow(workflows.ReobfuscationWorkflow)
	w.RegisterActivity(&workflows.ReobfuscationActivities{Sites: backends.Sites})

	slog.Info("reobfuscator worker started", "task_queue", cfg.Temporal.TaskQueue, "max_radius", cfg.Obfuscation.MaxRadius)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// start launches one run. The fixed workflow ID keeps a second run from
// starting while one is in progress.
func start(c client.Client, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "chargemap-reobfuscation",
		TaskQueue: cfg.Temporal.TaskQueue,
	}, workflows.ReobfuscationWorkflowName, workflows.ReobfuscationInput{})
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("re-obfuscation started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
}
