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

package entity

import (
	"time"

	"github.com/trackspace/workflow-scheme-service/view"
)

type WorkflowSchemeEntity struct {
	tableName struct{} `pg:"workflow_scheme, alias:workflow_scheme"`

	Id              string            `pg:"id, pk, type:varchar"`
	Name            string            `pg:"name, type:varchar, use_zero"`
	Description     string            `pg:"description, type:varchar, use_zero"`
	DefaultWorkflow string            `pg:"default_workflow, type:varchar, use_zero"`
	Mappings        map[string]string `pg:"mappings, type:jsonb"`
	LastModified    time.Time         `pg:"last_modified, type:timestamp without time zone"`
	LastModifiedBy  string            `pg:"last_modified_by, type:varchar"`
	DeletedAt       *time.Time        `pg:"deleted_at, type:timestamp without time zone"`
	DeletedBy       string            `pg:"deleted_by, type:varchar"`
}

type WorkflowSchemeDraftEntity struct {
	tableName struct{} `pg:"workflow_scheme_draft, alias:workflow_scheme_draft"`

	SchemeId        string            `pg:"scheme_id, pk, type:varchar"`
	Name            string            `pg:"name, type:varchar, use_zero"`
	Description     string            `pg:"description, type:varchar, use_zero"`
	DefaultWorkflow string            `pg:"default_workflow, type:varchar, use_zero"`
	Mappings        map[string]string `pg:"mappings, type:jsonb"`
	LastModified    time.Time         `pg:"last_modified, type:timestamp without time zone"`
	LastModifiedBy  string            `pg:"last_modified_by, type:varchar"`
}

func MakeWorkflowSchemeView(ent *WorkflowSchemeEntity) *view.WorkflowScheme {
	return &view.WorkflowScheme{
		Id:                ent.Id,
		Name:              ent.Name,
		Description:       ent.Description,
		DefaultWorkflow:   resolveDefault(ent.DefaultWorkflow),
		IssueTypeMappings: copyMappings(ent.Mappings),
		Draft:             false,
	}
}

// MakeWorkflowSchemeDraftView builds the draft read view. The original default and
// mappings come from the parent scheme and are resolved here, at the read boundary,
// so that the stored draft never duplicates parent state.
func MakeWorkflowSchemeDraftView(draft *WorkflowSchemeDraftEntity, parent *WorkflowSchemeEntity) *view.WorkflowScheme {
	lastModified := draft.LastModified
	return &view.WorkflowScheme{
		Id:                        draft.SchemeId,
		Name:                      draft.Name,
		Description:               draft.Description,
		DefaultWorkflow:           resolveDefault(draft.DefaultWorkflow),
		IssueTypeMappings:         copyMappings(draft.Mappings),
		Draft:                     true,
		OriginalDefaultWorkflow:   resolveDefault(parent.DefaultWorkflow),
		OriginalIssueTypeMappings: copyMappings(parent.Mappings),
		LastModified:              &lastModified,
		LastModifiedUser:          draft.LastModifiedBy,
	}
}

func MakeWorkflowSchemeEntity(scheme *view.WorkflowScheme, id string, userId string) *WorkflowSchemeEntity {
	return &WorkflowSchemeEntity{
		Id:              id,
		Name:            scheme.Name,
		Description:     scheme.Description,
		DefaultWorkflow: scheme.DefaultWorkflow,
		Mappings:        copyMappings(scheme.IssueTypeMappings),
		LastModified:    time.Now(),
		LastModifiedBy:  userId,
	}
}

// MakeWorkflowSchemeDraftEntity seeds a draft from its parent scheme.
func MakeWorkflowSchemeDraftEntity(parent *WorkflowSchemeEntity, userId string) *WorkflowSchemeDraftEntity {
	return &WorkflowSchemeDraftEntity{
		SchemeId:        parent.Id,
		Name:            parent.Name,
		Description:     parent.Description,
		DefaultWorkflow: parent.DefaultWorkflow,
		Mappings:        copyMappings(parent.Mappings),
		LastModified:    time.Now(),
		LastModifiedBy:  userId,
	}
}

func resolveDefault(defaultWorkflow string) string {
	if defaultWorkflow == "" {
		return view.SystemDefaultWorkflowName
	}
	return defaultWorkflow
}

func copyMappings(src map[string]string) map[string]string {
	result := make(map[string]string, len(src))
	for issueType, workflow := range src {
		result[issueType] = workflow
	}
	return result
}
