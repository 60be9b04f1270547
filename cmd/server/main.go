package main

import (
	"log"
	"net/http"
	"os"

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

func main() {
	dbPath := envOrDefault("SHARK_DB_PATH", "shark-orchestrator.db")
	workflowPath := envOrDefault("SHARK_WORKFLOW_CONFIG", "workflow.yaml")
	port := envOrDefault("SHARK_PORT", "8080")

	conn, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatal("failed to initialize database:", err)
	}
	defer conn.Close()

	if err := db.CheckIntegrity(conn); err != nil {
		log.Fatal("database integrity check failed:", err)
	}
	log.Println("database ready at", dbPath)

	loader, err := config.NewWorkflowLoader(workflowPath)
	if err != nil {
		log.Fatal("failed to load workflow config:", err)
	}
	loader.OnError(func(err error) {
		log.Printf("warning: workflow config reload failed: %v", err)
	})

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

	log.Printf("starting server on port %s", port)
	if err := http.ListenAndServe(":"+port, srv.Mux()); err != nil {
		log.Fatal("server failed to start:", err)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
