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

package service

import (
	"net/http"

	"github.com/trackspace/workflow-scheme-service/entity"
	"github.com/trackspace/workflow-scheme-service/exception"
	"github.com/trackspace/workflow-scheme-service/repository"
	"github.com/trackspace/workflow-scheme-service/view"
)

// CatalogService exposes the read-only workflow and issue type catalogs schemes
// reference.
type CatalogService interface {
	GetWorkflows() (*view.Workflows, error)
	GetWorkflow(name string) (*view.Workflow, error)
	GetIssueTypes() (*view.IssueTypes, error)
}

func NewCatalogService(workflowRepository repository.WorkflowRepository, issueTypeRepository repository.IssueTypeRepository) CatalogService {
	return &catalogServiceImpl{
		workflowRepository:  workflowRepository,
		issueTypeRepository: issueTypeRepository,
	}
}

type catalogServiceImpl struct {
	workflowRepository  repository.WorkflowRepository
	issueTypeRepository repository.IssueTypeRepository
}

func (c catalogServiceImpl) GetWorkflows() (*view.Workflows, error) {
	ents, err := c.workflowRepository.GetWorkflows()
	if err != nil {
		return nil, err
	}
	workflows := make([]view.Workflow, 0, len(ents))
	for i := range ents {
		workflows = append(workflows, *entity.MakeWorkflowView(&ents[i]))
	}
	return &view.Workflows{Workflows: workflows}, nil
}

func (c catalogServiceImpl) GetWorkflow(name string) (*view.Workflow, error) {
	ent, err := c.workflowRepository.GetWorkflowByName(name)
	if err != nil {
		return nil, err
	}
	if ent == nil {
		return nil, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.WorkflowNotFound,
			Message: exception.WorkflowNotFoundMsg,
			Params:  map[string]interface{}{"workflow": name},
		}
	}
	return entity.MakeWorkflowView(ent), nil
}

func (c catalogServiceImpl) GetIssueTypes() (*view.IssueTypes, error) {
	ents, err := c.issueTypeRepository.GetIssueTypes()
	if err != nil {
		return nil, err
	}
	issueTypes := make([]view.IssueType, 0, len(ents))
	for i := range ents {
		issueTypes = append(issueTypes, *entity.MakeIssueTypeView(&ents[i]))
	}
	return &view.IssueTypes{IssueTypes: issueTypes}, nil
}
