package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"time"

	"github.com/google/gops/agent"
	"github.com/jessevdk/go-flags"
	"github.com/viant/afs"
	_ "github.com/viant/afsc/aws"
	_ "github.com/viant/afsc/aws/secretmanager"
	_ "github.com/viant/afsc/gcp"
	_ "github.com/viant/afsc/s3"

	"github.com/viant/carecore/genai/llm"
	"github.com/viant/carecore/genai/llm/provider"
	"github.com/viant/carecore/genai/tool"
	"github.com/viant/carecore/internal/agentconfig"
	"github.com/viant/carecore/internal/agentfactory"
	"github.com/viant/carecore/internal/analyzer"
	"github.com/viant/carecore/internal/blobstore"
	"github.com/viant/carecore/internal/config"
	"github.com/viant/carecore/internal/contextsvc"
	"github.com/viant/carecore/internal/domain"
	"github.com/viant/carecore/internal/historystore"
	"github.com/viant/carecore/internal/logging"
	"github.com/viant/carecore/internal/registrystore"
	"github.com/viant/carecore/internal/scheduler"
	"github.com/viant/carecore/internal/turn"
)

func main() {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		log.Fatalf("%v", err)
	}

	if opts.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Printf("gops: %v", err)
		}
	}

	ctx := context.Background()
	if err := run(ctx, opts); err != nil {
		log.Fatalf("carecore: %v", err)
	}
}

func run(ctx context.Context, opts *Options) error {
	fs := afs.New()

	cfg, err := config.Load(ctx, fs, opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	agentsURL := cfg.AgentsConfigPath
	if agentsURL != "" && path.Dir(agentsURL) == "." {
		agentsURL = cfg.BaseURL + "/" + agentsURL
	}
	roster, err := agentconfig.Load(ctx, fs, agentsURL)
	if err != nil {
		return fmt.Errorf("load agents: %w", err)
	}

	logger := logging.New(os.Stderr, logging.LevelInfo)

	blobs := blobstore.New(fs, cfg.BaseURL)
	hist := historystore.New(blobs)
	reg := registrystore.New(blobs)

	validator, err := domain.NewPatientIDValidator(cfg.PatientIDPattern)
	if err != nil {
		return fmt.Errorf("compile patient id pattern: %w", err)
	}

	factory := provider.New()
	resolveModel := func(modelRef string) (llm.Model, error) {
		model := modelRef
		providerName := provider.ProviderBedrockClaude
		region := ""
		if cfg.Model != nil {
			if model == "" {
				model = cfg.Model.Model
			}
			if cfg.Model.Provider != "" {
				providerName = cfg.Model.Provider
			}
			region = cfg.Model.Region
		}
		return factory.CreateModel(ctx, &provider.Options{Provider: providerName, Model: model, Region: region})
	}

	analyzerModel, err := resolveModel("")
	if err != nil {
		return fmt.Errorf("resolve analyzer model: %w", err)
	}
	contextAnalyzer := analyzer.New(analyzerModel)

	svc := contextsvc.New(reg, hist, contextAnalyzer, validator, cfg.ArchiveFolder, nil)

	agents, err := agentfactory.Build(roster.All(), resolveModel, tool.NewRegistry(), nil)
	if err != nil {
		return fmt.Errorf("build agents: %w", err)
	}

	terminationModel, err := resolveModel("")
	if err != nil {
		return fmt.Errorf("resolve termination model: %w", err)
	}
	termination := scheduler.NewLLMTerminationEvaluator(terminationModel)

	sched, err := scheduler.New(agents, roster.FacilitatorName(), termination, cfg.MaxTurnIterations)
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	deadline := time.Duration(cfg.TurnDeadlineSeconds) * time.Second
	controller := turn.New(hist, svc, validator, sched, deadline, nil)

	if opts.Message != "" {
		return handleTurn(ctx, controller, logger, opts.ConversationID, opts.Message)
	}
	return repl(ctx, controller, logger, opts.ConversationID)
}

func handleTurn(ctx context.Context, controller *turn.Controller, logger *logging.Logger, conversationID, message string) error {
	reply, err := controller.Handle(ctx, conversationID, message)
	if err != nil {
		logger.Errorf("turn failed: %v", err)
		return err
	}
	fmt.Println(reply.Text)
	return nil
}

func repl(ctx context.Context, controller *turn.Controller, logger *logging.Logger, conversationID string) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stderr, "carecore: type a message and press enter (ctrl-d to quit)")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if err := handleTurn(ctx, controller, logger, conversationID, line); err != nil {
			logger.Errorf("turn error: %v", err)
		}
	}
	return scanner.Err()
}
