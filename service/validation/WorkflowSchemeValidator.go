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

package validation

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/trackspace/workflow-scheme-service/exception"
	"github.com/trackspace/workflow-scheme-service/repository"
)

const maxNameLength = 255
const maxDescriptionLength = 4000

// SchemeCandidate is a full scheme state to be checked before commit. Id is empty
// for a scheme that is being created.
type SchemeCandidate struct {
	Id              string
	Name            string
	Description     string
	DefaultWorkflow string
	Mappings        map[string]string
}

// WorkflowSchemeValidator checks a candidate scheme state against the reference
// catalogs and the name uniqueness rule. It never modifies anything, a failed
// validation leaves storage untouched.
type WorkflowSchemeValidator interface {
	// ValidateScheme returns nil for a valid candidate. A duplicate name is
	// reported alone as a conflict, all other findings are accumulated and
	// returned together.
	ValidateScheme(candidate SchemeCandidate) error
}

func NewWorkflowSchemeValidator(schemeRepository repository.WorkflowSchemeRepository,
	workflowRepository repository.WorkflowRepository,
	issueTypeRepository repository.IssueTypeRepository) WorkflowSchemeValidator {
	return &workflowSchemeValidatorImpl{
		schemeRepository:    schemeRepository,
		workflowRepository:  workflowRepository,
		issueTypeRepository: issueTypeRepository,
	}
}

type workflowSchemeValidatorImpl struct {
	schemeRepository    repository.WorkflowSchemeRepository
	workflowRepository  repository.WorkflowRepository
	issueTypeRepository repository.IssueTypeRepository
}

func (v workflowSchemeValidatorImpl) ValidateScheme(candidate SchemeCandidate) error {
	var findings []string

	switch {
	case strings.TrimSpace(candidate.Name) == "":
		findings = append(findings, "name: must not be empty")
	case len(candidate.Name) > maxNameLength:
		findings = append(findings, fmt.Sprintf("name: must not exceed %d characters", maxNameLength))
	default:
		existing, err := v.schemeRepository.GetSchemeByName(candidate.Name)
		if err != nil {
			return err
		}
		if existing != nil && existing.Id != candidate.Id {
			return &exception.CustomError{
				Status:  http.StatusConflict,
				Code:    exception.WorkflowSchemeNameAlreadyExists,
				Message: exception.WorkflowSchemeNameAlreadyExistsMsg,
				Params:  map[string]interface{}{"name": candidate.Name},
			}
		}
	}

	if len(candidate.Description) > maxDescriptionLength {
		findings = append(findings, fmt.Sprintf("description: must not exceed %d characters", maxDescriptionLength))
	}

	if candidate.DefaultWorkflow != "" {
		exists, err := v.workflowRepository.WorkflowExists(candidate.DefaultWorkflow)
		if err != nil {
			return err
		}
		if !exists {
			findings = append(findings, fmt.Sprintf("defaultWorkflow: workflow '%s' does not exist", candidate.DefaultWorkflow))
		}
	}

	// sorted for a stable findings order
	issueTypes := make([]string, 0, len(candidate.Mappings))
	for issueType := range candidate.Mappings {
		issueTypes = append(issueTypes, issueType)
	}
	sort.Strings(issueTypes)
	for _, issueType := range issueTypes {
		exists, err := v.issueTypeRepository.IssueTypeExists(issueType)
		if err != nil {
			return err
		}
		if !exists {
			findings = append(findings, fmt.Sprintf("issueTypeMappings: issue type '%s' does not exist", issueType))
		}
		workflow := candidate.Mappings[issueType]
		exists, err = v.workflowRepository.WorkflowExists(workflow)
		if err != nil {
			return err
		}
		if !exists {
			findings = append(findings, fmt.Sprintf("issueTypeMappings[%s]: workflow '%s' does not exist", issueType, workflow))
		}
	}

	if len(findings) > 0 {
		return &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.WorkflowSchemeInvalid,
			Message: exception.WorkflowSchemeInvalidMsg,
			Params:  map[string]interface{}{"errors": strings.Join(findings, "; ")},
		}
	}
	return nil
}
