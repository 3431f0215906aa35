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

package view

import "time"

// SystemDefaultWorkflowName is the workflow every issue type falls back to when a
// scheme has no explicit default. It is never stored, only substituted on reads.
const SystemDefaultWorkflowName = "default"

type WorkflowScheme struct {
	Id                        string            `json:"id"`
	Name                      string            `json:"name" validate:"required"`
	Description               string            `json:"description,omitempty"`
	DefaultWorkflow           string            `json:"defaultWorkflow,omitempty"`
	IssueTypeMappings         map[string]string `json:"issueTypeMappings,omitempty"`
	Draft                     bool              `json:"draft"`
	OriginalDefaultWorkflow   string            `json:"originalDefaultWorkflow,omitempty"`
	OriginalIssueTypeMappings map[string]string `json:"originalIssueTypeMappings,omitempty"`
	LastModified              *time.Time        `json:"lastModified,omitempty"`
	LastModifiedUser          string            `json:"lastModifiedUser,omitempty"`
}

type WorkflowSchemes struct {
	Schemes []WorkflowScheme `json:"schemes"`
}

// WorkflowSchemeUpdate is a partial update. Nil pointer means "leave the field
// untouched", pointer to a zero value means "clear it".
type WorkflowSchemeUpdate struct {
	Name                *string            `json:"name"`
	Description         *string            `json:"description"`
	DefaultWorkflow     *string            `json:"defaultWorkflow"`
	IssueTypeMappings   *map[string]string `json:"issueTypeMappings"`
	UpdateDraftIfNeeded bool               `json:"updateDraftIfNeeded"`
}

// HasSemanticChanges reports whether the update touches the routing-relevant part
// of the scheme (default workflow or issue type mappings) as opposed to only the
// name and description.
func (u *WorkflowSchemeUpdate) HasSemanticChanges() bool {
	return u.DefaultWorkflow != nil || u.IssueTypeMappings != nil
}

// WorkflowMapping groups the issue types assigned to a single workflow within a
// scheme. In mutation payloads nil IssueTypes leaves the grouping untouched and
// nil DefaultMapping leaves the default untouched.
type WorkflowMapping struct {
	Workflow            string    `json:"workflow" validate:"required"`
	IssueTypes          *[]string `json:"issueTypes,omitempty"`
	DefaultMapping      *bool     `json:"defaultMapping,omitempty"`
	UpdateDraftIfNeeded bool      `json:"updateDraftIfNeeded,omitempty"`
}

type WorkflowMappings struct {
	Mappings []WorkflowMapping `json:"mappings"`
}

type IssueTypeMapping struct {
	IssueType           string `json:"issueType"`
	Workflow            string `json:"workflow,omitempty"`
	UpdateDraftIfNeeded bool   `json:"updateDraftIfNeeded,omitempty"`
}

type DefaultMapping struct {
	Workflow            string `json:"workflow" validate:"required"`
	UpdateDraftIfNeeded bool   `json:"updateDraftIfNeeded,omitempty"`
}
