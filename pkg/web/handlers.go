package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/console"
	"github.com/zan8in/moongazing/pkg/result"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		writeJSON(w, http.StatusBadRequest, api.Response[any]{Code: http.StatusBadRequest, Message: "Content-Type must be application/json"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, api.Response[any]{Code: http.StatusBadRequest, Message: "invalid login body"})
		return
	}
	resp, err := s.console.Auth.Login(r.Context(), req.Username, req.Password)
	reply(w, resp, err)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.console.Auth.Logout(r.Context())
	reply(w, resp, err)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.console.Auth.Me(r.Context())
	reply(w, resp, err)
}

func pageQuery(r *http.Request) console.PageQuery {
	return console.PageQuery{
		Page:     intParam(r, "page"),
		PageSize: intParam(r, "pageSize"),
		Search:   r.URL.Query().Get("search"),
	}
}

func (s *Server) tasksHandler(w http.ResponseWriter, r *http.Request) {
	q := console.TaskQuery{
		PageQuery: pageQuery(r),
		Status:    r.URL.Query().Get("status"),
		Type:      r.URL.Query().Get("type"),
	}
	resp, err := s.console.Tasks.List(r.Context(), q)
	reply(w, resp, err)
}

func (s *Server) taskHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.console.Tasks.Get(r.Context(), mux.Vars(r)["id"])
	reply(w, resp, err)
}

func (s *Server) taskActionHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	action := console.TaskAction(vars["action"])
	if !action.Valid() {
		writeJSON(w, http.StatusBadRequest, api.Response[any]{Code: http.StatusBadRequest, Message: "unknown task action " + vars["action"]})
		return
	}
	resp, err := s.console.Tasks.Do(r.Context(), vars["id"], action)
	reply(w, resp, err)
}

func (s *Server) taskLogsHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.console.Tasks.Logs(r.Context(), mux.Vars(r)["id"], pageQuery(r))
	reply(w, resp, err)
}

func (s *Server) resultsHandler(w http.ResponseWriter, r *http.Request) {
	q := console.ResultQuery{
		Type:       result.Kind(r.URL.Query().Get("type")),
		Page:       intParam(r, "page"),
		PageSize:   intParam(r, "pageSize"),
		Search:     r.URL.Query().Get("search"),
		StatusCode: intParam(r, "statusCode"),
	}
	resp, err := s.console.Results.List(r.Context(), mux.Vars(r)["id"], q)
	reply(w, resp, err)
}

func (s *Server) resultStatsHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.console.Results.Stats(r.Context(), mux.Vars(r)["id"])
	reply(w, resp, err)
}

func (s *Server) vulnsHandler(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()
	q := console.VulnQuery{
		PageQuery: pageQuery(r),
		Severity:  qv.Get("severity"),
		Status:    qv.Get("status"),
		Type:      qv.Get("type"),
		AssetID:   qv.Get("assetId"),
		TaskID:    qv.Get("taskId"),
	}
	resp, err := s.console.Vulns.List(r.Context(), q)
	reply(w, resp, err)
}

func (s *Server) nodesHandler(w http.ResponseWriter, r *http.Request) {
	q := console.NodeQuery{
		PageQuery: pageQuery(r),
		Status:    r.URL.Query().Get("status"),
		Type:      r.URL.Query().Get("type"),
	}
	resp, err := s.console.Nodes.List(r.Context(), q)
	reply(w, resp, err)
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.console.Dashboard.Stats(r.Context())
	reply(w, resp, err)
}

// queueHandler never fails; an unreachable queue reports available=false.
func (s *Server) queueHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Response[console.QueueOverview]{
		Code:    0,
		Message: "success",
		Data:    s.console.Queue.Overview(r.Context()),
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.Response[map[string]any]{
		Message: "ok",
		Data: map[string]any{
			"started": s.started.Format(time.RFC3339),
			"uptime":  time.Since(s.started).Round(time.Second).String(),
			"system":  s.monitor.Stats(),
		},
	})
}
