package cli

import (
	"github.com/jwwelbor/shark-orchestrator/internal/api"
	"github.com/jwwelbor/shark-orchestrator/internal/cascade"
	"github.com/jwwelbor/shark-orchestrator/internal/config"
	"github.com/jwwelbor/shark-orchestrator/internal/db"
	"github.com/jwwelbor/shark-orchestrator/internal/dependency"
	"github.com/jwwelbor/shark-orchestrator/internal/recommendation"
	"github.com/jwwelbor/shark-orchestrator/internal/repository"
	"github.com/jwwelbor/shark-orchestrator/internal/status"
	"github.com/jwwelbor/shark-orchestrator/internal/workflow"
)

// OpenServer opens the database at the configured path and wires every
// repository and service a CLI command needs, the same way
// cmd/server/main.go wires the HTTP surface. The caller must Close the
// returned closer when done.
func OpenServer() (*api.Server, func() error, error) {
	dbPath, err := GetDBPath()
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.InitDB(dbPath)
	if err != nil {
		return nil, nil, err
	}

	loader, err := config.NewWorkflowLoader("workflow.yaml")
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	repoDB := repository.NewDB(conn)
	wf := workflow.NewService(loader)

	srv := &api.Server{
		Projects:         repository.NewProjectRepository(repoDB),
		Features:         repository.NewFeatureRepository(repoDB),
		Tasks:            repository.NewTaskRepository(repoDB),
		Sections:         repository.NewSectionRepository(repoDB),
		Dependencies:     repository.NewDependencyRepository(repoDB),
		Tags:             repository.NewTagRepository(repoDB),
		Workflow:         wf,
		DependencyEngine: dependency.NewService(repoDB, repository.NewDependencyRepository(repoDB)),
		Recommender:      recommendation.NewEngine(repository.NewTaskRepository(repoDB), repository.NewDependencyRepository(repoDB), repository.NewTagRepository(repoDB), wf),
	}

	statusSvc := status.NewService(repoDB, wf, nil)
	cascadeSvc := cascade.NewService(repoDB, wf)
	statusSvc.SetCascadeRunner(cascadeSvc)
	srv.Status = statusSvc

	return srv, conn.Close, nil
}
