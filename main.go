// Copyright 2024-2025 TrackSpace Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/trackspace/workflow-scheme-service/controller"
	"github.com/trackspace/workflow-scheme-service/db"
	"github.com/trackspace/workflow-scheme-service/metrics"
	"github.com/trackspace/workflow-scheme-service/middleware"
	"github.com/trackspace/workflow-scheme-service/repository"
	"github.com/trackspace/workflow-scheme-service/security"
	"github.com/trackspace/workflow-scheme-service/service"
	"github.com/trackspace/workflow-scheme-service/service/validation"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	logFormatter := &prefixed.TextFormatter{
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
		FullTimestamp:   true,
		ForceFormatting: true,
	}
	log.SetFormatter(logFormatter)
	log.SetOutput(&lumberjack.Logger{
		Filename:   "logs/workflow-scheme-service.log",
		MaxSize:    10, // megabytes
		MaxBackups: 10,
	})
}

func main() {
	systemInfoService, err := service.NewSystemInfoService()
	if err != nil {
		log.Fatalf("Failed to read system configuration: %s", err.Error())
		return
	}
	if !systemInfoService.IsProductionMode() {
		log.SetOutput(os.Stdout)
	}
	if logLevel, err := log.ParseLevel(systemInfoService.GetLogLevel()); err == nil {
		log.SetLevel(logLevel)
	}

	readyChan := make(chan bool)

	cp := db.NewConnectionProvider(systemInfoService.GetCredsFromEnv())

	schemeRepository := repository.NewWorkflowSchemeRepositoryPG(cp)
	workflowRepository := repository.NewWorkflowRepositoryPG(cp)
	issueTypeRepository := repository.NewIssueTypeRepositoryPG(cp)
	projectRepository := repository.NewProjectRepositoryPG(cp)

	schemeValidator := validation.NewWorkflowSchemeValidator(schemeRepository, workflowRepository, issueTypeRepository)
	schemeService := service.NewWorkflowSchemeService(schemeRepository, projectRepository, workflowRepository, issueTypeRepository, schemeValidator)
	catalogService := service.NewCatalogService(workflowRepository, issueTypeRepository)
	cleanupService := service.NewCleanupService(schemeRepository, systemInfoService)

	schemeController := controller.NewWorkflowSchemeController(schemeService)
	catalogController := controller.NewCatalogController(catalogService)
	systemInfoController := controller.NewSystemInfoController(systemInfoService)
	healthController := controller.NewHealthController(readyChan)

	if err := security.SetupGoGuardian(systemInfoService); err != nil {
		log.Fatalf("Failed to setup authentication: %s", err.Error())
		return
	}

	if err := cleanupService.CreateCleanupJob(systemInfoService.GetSchemesCleanupSchedule()); err != nil {
		log.Errorf("Failed to schedule workflow scheme cleanup: %s", err.Error())
	}

	metrics.RegisterAllPrometheusApplicationMetrics()

	r := mux.NewRouter()
	r.Use(middleware.PrometheusMiddleware)

	r.HandleFunc("/api/v1/workflowschemes", security.Secure(schemeController.AddWorkflowScheme)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/workflowschemes", security.Secure(schemeController.GetWorkflowSchemes)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}", security.Secure(schemeController.GetWorkflowScheme)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}", security.Secure(schemeController.UpdateWorkflowScheme)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}", security.Secure(schemeController.DeleteWorkflowScheme)).Methods(http.MethodDelete)

	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft", security.Secure(schemeController.CreateWorkflowSchemeDraft)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft", security.Secure(schemeController.GetWorkflowSchemeDraft)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft", security.Secure(schemeController.UpdateWorkflowSchemeDraft)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft", security.Secure(schemeController.DeleteWorkflowSchemeDraft)).Methods(http.MethodDelete)

	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/workflow", security.Secure(schemeController.GetWorkflowMappings)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/workflow/{workflowName}", security.Secure(schemeController.UpdateWorkflowMapping)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/workflow/{workflowName}", security.Secure(schemeController.DeleteWorkflowMapping)).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/workflow", security.Secure(schemeController.GetDraftWorkflowMappings)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/workflow/{workflowName}", security.Secure(schemeController.UpdateDraftWorkflowMapping)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/workflow/{workflowName}", security.Secure(schemeController.DeleteDraftWorkflowMapping)).Methods(http.MethodDelete)

	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/issuetype/{issueType}", security.Secure(schemeController.GetIssueTypeMapping)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/issuetype/{issueType}", security.Secure(schemeController.UpdateIssueTypeMapping)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/issuetype/{issueType}", security.Secure(schemeController.DeleteIssueTypeMapping)).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/issuetype/{issueType}", security.Secure(schemeController.GetDraftIssueTypeMapping)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/issuetype/{issueType}", security.Secure(schemeController.UpdateDraftIssueTypeMapping)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/issuetype/{issueType}", security.Secure(schemeController.DeleteDraftIssueTypeMapping)).Methods(http.MethodDelete)

	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/default", security.Secure(schemeController.GetDefaultWorkflow)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/default", security.Secure(schemeController.UpdateDefaultWorkflow)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/default", security.Secure(schemeController.DeleteDefaultWorkflow)).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/default", security.Secure(schemeController.GetDraftDefaultWorkflow)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/default", security.Secure(schemeController.UpdateDraftDefaultWorkflow)).Methods(http.MethodPut)
	r.HandleFunc("/api/v1/workflowschemes/{schemeId}/draft/default", security.Secure(schemeController.DeleteDraftDefaultWorkflow)).Methods(http.MethodDelete)

	r.HandleFunc("/api/v1/workflows", security.Secure(catalogController.GetWorkflows)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/workflows/{workflowName}", security.Secure(catalogController.GetWorkflow)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/issuetypes", security.Secure(catalogController.GetIssueTypes)).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/system/info", security.Secure(systemInfoController.GetSystemInfo)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/live", healthController.HandleLiveRequest).Methods(http.MethodGet)
	r.HandleFunc("/ready", healthController.HandleReadyRequest).Methods(http.MethodGet)

	var corsOptions []handlers.CORSOption
	corsOptions = append(corsOptions,
		handlers.AllowedHeaders([]string{"Connection", "Accept-Encoding", "Content-Encoding", "X-Requested-With", "Content-Type", "Authorization", "api-key"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}))
	if originAllowed := systemInfoService.GetOriginAllowed(); originAllowed != "" {
		corsOptions = append(corsOptions, handlers.AllowedOrigins([]string{originAllowed}))
	}

	srv := &http.Server{
		Handler:      handlers.CompressHandler(handlers.CORS(corsOptions...)(r)),
		Addr:         systemInfoService.GetListenAddress(),
		WriteTimeout: 300 * time.Second,
		ReadTimeout:  30 * time.Second,
	}

	readyChan <- true
	close(readyChan)

	log.Infof("Workflow scheme service %s is starting to listen on %s", systemInfoService.GetBackendVersion(), systemInfoService.GetListenAddress())
	log.Fatalf("%v", srv.ListenAndServe())
}
