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

package controller

import (
	"net/http"

	"github.com/trackspace/workflow-scheme-service/service"
)

type CatalogController interface {
	GetWorkflows(w http.ResponseWriter, r *http.Request)
	GetWorkflow(w http.ResponseWriter, r *http.Request)
	GetIssueTypes(w http.ResponseWriter, r *http.Request)
}

func NewCatalogController(catalogService service.CatalogService) CatalogController {
	return &catalogControllerImpl{catalogService: catalogService}
}

type catalogControllerImpl struct {
	catalogService service.CatalogService
}

func (c catalogControllerImpl) GetWorkflows(w http.ResponseWriter, r *http.Request) {
	result, err := c.catalogService.GetWorkflows()
	if err != nil {
		RespondWithError(w, "Failed to get workflows", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c catalogControllerImpl) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	workflowName := getStringParam(r, "workflowName")
	result, err := c.catalogService.GetWorkflow(workflowName)
	if err != nil {
		RespondWithError(w, "Failed to get workflow", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c catalogControllerImpl) GetIssueTypes(w http.ResponseWriter, r *http.Request) {
	result, err := c.catalogService.GetIssueTypes()
	if err != nil {
		RespondWithError(w, "Failed to get issue types", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}
