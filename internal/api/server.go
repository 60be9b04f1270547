package api

import (
	"net/http"

	"github.com/jwwelbor/shark-orchestrator/internal/dependency"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/recommendation"
	"github.com/jwwelbor/shark-orchestrator/internal/repository"
	"github.com/jwwelbor/shark-orchestrator/internal/status"
	"github.com/jwwelbor/shark-orchestrator/internal/workflow"
)

// Server holds every dependency the operation handlers need: one
// repository per entity, the status progression service, the dependency
// engine, and the recommendation engine.
type Server struct {
	Projects     *repository.ProjectRepository
	Features     *repository.FeatureRepository
	Tasks        *repository.TaskRepository
	Sections     *repository.SectionRepository
	Dependencies *repository.DependencyRepository
	Tags         *repository.TagRepository

	Workflow       *workflow.Service
	Status         *status.Service
	DependencyEngine *dependency.Service
	Recommender    *recommendation.Engine
}

// Mux builds the routing table: one endpoint per operation named in the
// External Interfaces surface.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/manage_project", s.handleManageProject)
	mux.HandleFunc("/manage_feature", s.handleManageFeature)
	mux.HandleFunc("/manage_task", s.handleManageTask)
	mux.HandleFunc("/query_container", s.handleQueryContainer)
	mux.HandleFunc("/manage_dependencies", s.handleManageDependencies)
	mux.HandleFunc("/get_next_task", s.handleGetNextTask)
	mux.HandleFunc("/request_transition", s.handleRequestTransition)
	mux.HandleFunc("/manage_sections", s.handleManageSections)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}

// --- manage_project --------------------------------------------------

type manageProjectRequest struct {
	Action  string          `json:"action"`
	ID      string          `json:"id,omitempty"`
	Key     string          `json:"key,omitempty"`
	Query   string          `json:"query,omitempty"`
	Status  string          `json:"status,omitempty"`
	Project *models.Project `json:"project,omitempty"`
}

func (s *Server) handleManageProject(w http.ResponseWriter, r *http.Request) {
	var req manageProjectRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, models.NewValidationError("body", "malformed request"))
		return
	}

	switch req.Action {
	case "create":
		if req.Project == nil {
			writeErr(w, models.NewValidationError("project", "required"))
			return
		}
		if req.Project.Status == "" {
			req.Project.Status = s.Workflow.GetInitialStatus(models.EntityTypeProject)
		}
		if err := s.Projects.Create(r.Context(), req.Project); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Project)
	case "get":
		p, err := s.getProject(r, req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, p)
	case "update":
		if req.Project == nil {
			writeErr(w, models.NewValidationError("project", "required"))
			return
		}
		if err := s.Projects.Update(r.Context(), req.Project); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Project)
	case "list":
		ps, err := s.Projects.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, ps)
	case "search":
		ps, err := s.Projects.Search(r.Context(), req.Query)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, ps)
	default:
		writeErr(w, models.NewValidationError("action", "must be create, get, update, list, or search"))
	}
}

func (s *Server) getProject(r *http.Request, req manageProjectRequest) (*models.Project, error) {
	if req.ID != "" {
		return s.Projects.GetByID(r.Context(), req.ID)
	}
	return s.Projects.GetByKey(r.Context(), req.Key)
}

// --- manage_feature ----------------------------------------------------

type manageFeatureRequest struct {
	Action    string          `json:"action"`
	ID        string          `json:"id,omitempty"`
	Key       string          `json:"key,omitempty"`
	ProjectID string          `json:"project_id,omitempty"`
	Query     string          `json:"query,omitempty"`
	Feature   *models.Feature `json:"feature,omitempty"`
}

func (s *Server) handleManageFeature(w http.ResponseWriter, r *http.Request) {
	var req manageFeatureRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, models.NewValidationError("body", "malformed request"))
		return
	}

	switch req.Action {
	case "create":
		if req.Feature == nil {
			writeErr(w, models.NewValidationError("feature", "required"))
			return
		}
		if req.Feature.Status == "" {
			req.Feature.Status = s.Workflow.GetInitialStatus(models.EntityTypeFeature)
		}
		if err := s.Features.Create(r.Context(), req.Feature); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Feature)
	case "get":
		var f *models.Feature
		var err error
		if req.ID != "" {
			f, err = s.Features.GetByID(r.Context(), req.ID)
		} else {
			f, err = s.Features.GetByKey(r.Context(), req.Key)
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, f)
	case "update":
		if req.Feature == nil {
			writeErr(w, models.NewValidationError("feature", "required"))
			return
		}
		if err := s.Features.Update(r.Context(), req.Feature); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Feature)
	case "list":
		var fs []*models.Feature
		var err error
		if req.ProjectID != "" {
			fs, err = s.Features.ListByProject(r.Context(), req.ProjectID)
		} else {
			fs, err = s.Features.List(r.Context())
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, fs)
	case "search":
		fs, err := s.Features.Search(r.Context(), req.Query)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, fs)
	default:
		writeErr(w, models.NewValidationError("action", "must be create, get, update, list, or search"))
	}
}

// --- manage_task -------------------------------------------------------

type manageTaskRequest struct {
	Action    string       `json:"action"`
	ID        string       `json:"id,omitempty"`
	FeatureID string       `json:"feature_id,omitempty"`
	ProjectID string       `json:"project_id,omitempty"`
	Status    string       `json:"status,omitempty"`
	Statuses  []string     `json:"statuses,omitempty"`
	Query     string       `json:"query,omitempty"`
	Task      *models.Task `json:"task,omitempty"`
}

func (s *Server) handleManageTask(w http.ResponseWriter, r *http.Request) {
	var req manageTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, models.NewValidationError("body", "malformed request"))
		return
	}

	switch req.Action {
	case "create":
		if req.Task == nil {
			writeErr(w, models.NewValidationError("task", "required"))
			return
		}
		if req.Task.Status == "" {
			req.Task.Status = s.Workflow.GetInitialStatus(models.EntityTypeTask)
		}
		if err := s.Tasks.Create(r.Context(), req.Task); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Task)
	case "get":
		t, err := s.Tasks.GetByID(r.Context(), req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, t)
	case "update":
		if req.Task == nil {
			writeErr(w, models.NewValidationError("task", "required"))
			return
		}
		if err := s.Tasks.Update(r.Context(), req.Task); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Task)
	case "list":
		ts, err := s.listTasks(r, req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, ts)
	case "search":
		ts, err := s.Tasks.Search(r.Context(), req.Query)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, ts)
	default:
		writeErr(w, models.NewValidationError("action", "must be create, get, update, list, or search"))
	}
}

func (s *Server) listTasks(r *http.Request, req manageTaskRequest) ([]*models.Task, error) {
	switch {
	case req.FeatureID != "":
		return s.Tasks.ListByFeature(r.Context(), req.FeatureID)
	case req.ProjectID != "":
		return s.Tasks.ListByProject(r.Context(), req.ProjectID)
	case len(req.Statuses) > 0:
		return s.Tasks.FilterByStatuses(r.Context(), req.Statuses)
	case req.Status != "":
		return s.Tasks.FilterByStatus(r.Context(), req.Status)
	default:
		return s.Tasks.List(r.Context())
	}
}

// --- query_container -----------------------------------------------

type queryContainerRequest struct {
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	ID         string `json:"id"`

	// Filters, used by the list/search/overview actions.
	Role         string   `json:"role,omitempty"`
	Status       []string `json:"status,omitempty"`
	Priority     []string `json:"priority,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	MatchAllTags bool     `json:"match_all_tags,omitempty"`
	TextQuery    string   `json:"text_query,omitempty"`
	ProjectID    string   `json:"project_id,omitempty"`
	FeatureID    string   `json:"feature_id,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

type containerResult struct {
	Entity   any                `json:"entity"`
	Features []*models.Feature  `json:"features,omitempty"`
	Tasks    []*models.Task     `json:"tasks,omitempty"`
	Sections []*models.Section  `json:"sections"`
}

type overviewResult struct {
	Projects int `json:"projects"`
	Features int `json:"features"`
	Tasks    int `json:"tasks"`
	Tags     int `json:"tags"`
}

// handleQueryContainer serves four actions: "get" returns a Project or
// Feature together with its child entities and attached sections in
// one response; "list" and "search" run task.FindByFilters' general
// filter surface (role, status, priority, tags, text, project/feature
// scope, limit); "overview" returns aggregate counts across the
// catalog.
func (s *Server) handleQueryContainer(w http.ResponseWriter, r *http.Request) {
	var req queryContainerRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, models.NewValidationError("body", "malformed request"))
		return
	}
	if req.Action == "" {
		req.Action = "get"
	}

	switch req.Action {
	case "get":
		s.queryContainerGet(w, r, req)
	case "list", "search":
		s.queryContainerList(w, r, req)
	case "overview":
		s.queryContainerOverview(w, r)
	default:
		writeErr(w, models.NewValidationError("action", "must be get, list, search, or overview"))
	}
}

func (s *Server) queryContainerGet(w http.ResponseWriter, r *http.Request, req queryContainerRequest) {
	switch models.EntityType(req.EntityType) {
	case models.EntityTypeProject:
		p, err := s.Projects.GetByID(r.Context(), req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		features, err := s.Features.ListByProject(r.Context(), req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		tasks, err := s.Tasks.ListByProject(r.Context(), req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		sections, err := s.Sections.ListForEntity(r.Context(), models.EntityTypeProject, req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, containerResult{Entity: p, Features: features, Tasks: tasks, Sections: sections})
	case models.EntityTypeFeature:
		f, err := s.Features.GetByID(r.Context(), req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		tasks, err := s.Tasks.ListByFeature(r.Context(), req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		sections, err := s.Sections.ListForEntity(r.Context(), models.EntityTypeFeature, req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, containerResult{Entity: f, Tasks: tasks, Sections: sections})
	default:
		writeErr(w, models.NewValidationError("entity_type", "must be project or feature"))
	}
}

// queryContainerList answers the list/search actions over tasks: a
// role filter is resolved against the workflow's task status
// progression into the matching StatusIn set before delegating to
// TaskRepository.FindByFilters. project_id and feature_id compose with
// every other filter rather than shortcutting to a dedicated lookup.
func (s *Server) queryContainerList(w http.ResponseWriter, r *http.Request, req queryContainerRequest) {
	filter := repository.TaskFilter{
		ProjectID:    req.ProjectID,
		FeatureID:    req.FeatureID,
		StatusIn:     req.Status,
		Tags:         req.Tags,
		MatchAllTags: req.MatchAllTags,
		TextQuery:    req.TextQuery,
		Limit:        req.Limit,
	}
	for _, p := range req.Priority {
		filter.PriorityIn = append(filter.PriorityIn, models.Priority(p))
	}
	if req.Role != "" {
		filter.StatusIn = append(filter.StatusIn, s.Workflow.StatusesForRole(models.EntityTypeTask, models.Role(req.Role))...)
	}

	tasks, err := s.Tasks.FindByFilters(r.Context(), filter)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, tasks)
}

func (s *Server) queryContainerOverview(w http.ResponseWriter, r *http.Request) {
	projects, err := s.Projects.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	features, err := s.Features.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	tasks, err := s.Tasks.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	tags, err := s.Tags.GetAllTags(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, overviewResult{
		Projects: len(projects),
		Features: len(features),
		Tasks:    len(tasks),
		Tags:     len(tags),
	})
}

// --- manage_dependencies --------------------------------------------

type manageDependenciesRequest struct {
	Action     string       `json:"action"`
	ID         string       `json:"id,omitempty"`
	TaskID     string       `json:"task_id,omitempty"`
	TaskIDs    []string     `json:"task_ids,omitempty"`
	SourceID   string       `json:"source_id,omitempty"`
	SourceIDs  []string     `json:"source_ids,omitempty"`
	TargetIDs  []string     `json:"target_ids,omitempty"`
	SinkID     string       `json:"sink_id,omitempty"`
	UnblockAt  *models.Role `json:"unblock_at,omitempty"`
	Dependency *models.Dependency `json:"dependency,omitempty"`
}

func (s *Server) handleManageDependencies(w http.ResponseWriter, r *http.Request) {
	var req manageDependenciesRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, models.NewValidationError("body", "malformed request"))
		return
	}

	switch req.Action {
	case "create_one":
		if req.Dependency == nil {
			writeErr(w, models.NewValidationError("dependency", "required"))
			return
		}
		if err := s.DependencyEngine.CreateOne(r.Context(), req.Dependency); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Dependency)
	case "create_linear":
		deps, err := s.DependencyEngine.CreateLinear(r.Context(), req.TaskIDs, req.UnblockAt)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, deps)
	case "create_fan_out":
		deps, err := s.DependencyEngine.CreateFanOut(r.Context(), req.SourceID, req.TargetIDs, req.UnblockAt)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, deps)
	case "create_fan_in":
		deps, err := s.DependencyEngine.CreateFanIn(r.Context(), req.SourceIDs, req.SinkID, req.UnblockAt)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, deps)
	case "list":
		deps, err := s.listDependencies(r, req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, deps)
	case "delete":
		if err := s.Dependencies.Delete(r.Context(), req.ID); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, nil)
	case "delete_by_endpoints":
		if req.Dependency == nil {
			writeErr(w, models.NewValidationError("dependency", "required"))
			return
		}
		if err := s.Dependencies.DeleteByEndpoints(r.Context(), req.Dependency.FromTaskID, req.Dependency.ToTaskID, req.Dependency.Type); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, nil)
	case "delete_all":
		if req.TaskID == "" {
			writeErr(w, models.NewValidationError("task_id", "required"))
			return
		}
		if err := s.Dependencies.DeleteAllForTask(r.Context(), req.TaskID); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, nil)
	default:
		writeErr(w, models.NewValidationError("action", "must be create_one, create_linear, create_fan_out, create_fan_in, list, delete, delete_by_endpoints, or delete_all"))
	}
}

func (s *Server) listDependencies(r *http.Request, req manageDependenciesRequest) ([]*models.Dependency, error) {
	switch {
	case req.TaskID != "":
		return s.Dependencies.FindByTaskID(r.Context(), req.TaskID)
	default:
		return s.Dependencies.ListAll(r.Context())
	}
}

// --- get_next_task ----------------------------------------------------

type getNextTaskRequest struct {
	ScopeType      string `json:"scope_type"`
	ScopeID        string `json:"scope_id,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	IncludeDetails bool   `json:"include_details,omitempty"`
}

type getNextTaskResponse struct {
	Mode            recommendation.Mode                  `json:"mode"`
	Tasks           []recommendation.TaskBrief            `json:"tasks"`
	TotalCandidates int                                    `json:"totalCandidates"`
	NoCandidates    recommendation.NoCandidatesReason      `json:"noCandidates,omitempty"`
}

func (s *Server) handleGetNextTask(w http.ResponseWriter, r *http.Request) {
	var req getNextTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, models.NewValidationError("body", "malformed request"))
		return
	}
	if req.ScopeType == "" {
		req.ScopeType = string(recommendation.ScopeCatalog)
	}

	result, err := s.Recommender.Recommend(r.Context(), recommendation.Scope{
		Type: recommendation.ScopeType(req.ScopeType),
		ID:   req.ScopeID,
	}, req.Limit, req.IncludeDetails)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, getNextTaskResponse{
		Mode:            result.Mode,
		Tasks:           result.Tasks,
		TotalCandidates: result.TotalCandidates,
		NoCandidates:    result.NoCandidates,
	})
}

// --- request_transition ------------------------------------------------

type requestTransitionRequest struct {
	EntityType      string  `json:"entity_type"`
	EntityID        string  `json:"entity_id"`
	ExpectedVersion int64   `json:"expected_version"`
	NewStatus       string  `json:"new_status"`
	Trigger         string  `json:"trigger"`
}

type requestTransitionResponse struct {
	Kind    string                         `json:"kind"`
	NewRole string                         `json:"new_role,omitempty"`
	Reason  string                         `json:"reason,omitempty"`
	Cascade *models.CompletionCascadeReport `json:"cascade,omitempty"`
}

func (s *Server) handleRequestTransition(w http.ResponseWriter, r *http.Request) {
	var req requestTransitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, models.NewValidationError("body", "malformed request"))
		return
	}

	entityType := models.EntityType(req.EntityType)
	trigger := models.Trigger(req.Trigger)

	if entityType == models.EntityTypeTask {
		decision, err := s.Status.ApplyTransition(r.Context(), req.EntityID, req.ExpectedVersion, req.NewStatus, trigger)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, requestTransitionResponse{Kind: string(decision.Kind), NewRole: string(decision.NewRole), Reason: decision.Reason})
		return
	}

	decision, cascade, err := s.Status.ApplyContainerTransition(r.Context(), entityType, req.EntityID, req.ExpectedVersion, req.NewStatus, trigger)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, requestTransitionResponse{Kind: string(decision.Kind), NewRole: string(decision.NewRole), Reason: decision.Reason, Cascade: cascade})
}

// --- manage_sections ----------------------------------------------------

type manageSectionsRequest struct {
	Action     string          `json:"action"`
	ID         string          `json:"id,omitempty"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   string          `json:"entity_id,omitempty"`
	Section    *models.Section `json:"section,omitempty"`
}

func (s *Server) handleManageSections(w http.ResponseWriter, r *http.Request) {
	var req manageSectionsRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, models.NewValidationError("body", "malformed request"))
		return
	}

	switch req.Action {
	case "create":
		if req.Section == nil {
			writeErr(w, models.NewValidationError("section", "required"))
			return
		}
		if err := s.Sections.Create(r.Context(), req.Section); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Section)
	case "get":
		sec, err := s.Sections.GetByID(r.Context(), req.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, sec)
	case "update":
		if req.Section == nil {
			writeErr(w, models.NewValidationError("section", "required"))
			return
		}
		if err := s.Sections.Update(r.Context(), req.Section); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, req.Section)
	case "list":
		secs, err := s.Sections.ListForEntity(r.Context(), models.EntityType(req.EntityType), req.EntityID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, secs)
	case "delete":
		if err := s.Sections.Delete(r.Context(), req.ID); err != nil {
			writeErr(w, err)
			return
		}
		writeOK(w, nil)
	default:
		writeErr(w, models.NewValidationError("action", "must be create, get, update, list, or delete"))
	}
}
