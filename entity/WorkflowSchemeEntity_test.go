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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/trackspace/workflow-scheme-service/view"
)

func TestMakeWorkflowSchemeViewResolvesDefault(t *testing.T) {
	ent := &WorkflowSchemeEntity{Id: "id-1", Name: "Scheme", Mappings: map[string]string{"1": "classic"}}
	result := MakeWorkflowSchemeView(ent)
	assert.Equal(t, view.SystemDefaultWorkflowName, result.DefaultWorkflow)
	assert.False(t, result.Draft)

	ent.DefaultWorkflow = "classic"
	assert.Equal(t, "classic", MakeWorkflowSchemeView(ent).DefaultWorkflow)
}

func TestMakeWorkflowSchemeViewCopiesMappings(t *testing.T) {
	ent := &WorkflowSchemeEntity{Id: "id-1", Mappings: map[string]string{"1": "classic"}}
	result := MakeWorkflowSchemeView(ent)
	result.IssueTypeMappings["1"] = "changed"
	assert.Equal(t, "classic", ent.Mappings["1"])
}

func TestMakeWorkflowSchemeDraftView(t *testing.T) {
	parent := &WorkflowSchemeEntity{
		Id:              "id-1",
		Name:            "Scheme",
		DefaultWorkflow: "classic",
		Mappings:        map[string]string{"1": "classic"},
	}
	modified := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	draft := &WorkflowSchemeDraftEntity{
		SchemeId:        "id-1",
		Name:            "Scheme",
		DefaultWorkflow: "",
		Mappings:        map[string]string{"1": "simple"},
		LastModified:    modified,
		LastModifiedBy:  "editor",
	}
	result := MakeWorkflowSchemeDraftView(draft, parent)
	assert.True(t, result.Draft)
	assert.Equal(t, "id-1", result.Id)
	assert.Equal(t, view.SystemDefaultWorkflowName, result.DefaultWorkflow)
	assert.Equal(t, "classic", result.OriginalDefaultWorkflow)
	assert.Equal(t, map[string]string{"1": "simple"}, result.IssueTypeMappings)
	assert.Equal(t, map[string]string{"1": "classic"}, result.OriginalIssueTypeMappings)
	assert.Equal(t, modified, *result.LastModified)
	assert.Equal(t, "editor", result.LastModifiedUser)
}

func TestMakeWorkflowSchemeDraftEntitySeedsFromParent(t *testing.T) {
	parent := &WorkflowSchemeEntity{
		Id:              "id-1",
		Name:            "Scheme",
		Description:     "desc",
		DefaultWorkflow: "classic",
		Mappings:        map[string]string{"1": "classic"},
	}
	draft := MakeWorkflowSchemeDraftEntity(parent, "editor")
	assert.Equal(t, "id-1", draft.SchemeId)
	assert.Equal(t, "Scheme", draft.Name)
	assert.Equal(t, "desc", draft.Description)
	assert.Equal(t, "classic", draft.DefaultWorkflow)
	assert.Equal(t, "editor", draft.LastModifiedBy)

	draft.Mappings["2"] = "simple"
	assert.NotContains(t, parent.Mappings, "2")
}
