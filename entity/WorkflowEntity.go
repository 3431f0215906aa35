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

import "github.com/trackspace/workflow-scheme-service/view"

type WorkflowEntity struct {
	tableName struct{} `pg:"workflow, alias:workflow"`

	Name        string `pg:"name, pk, type:varchar"`
	Description string `pg:"description, type:varchar, use_zero"`
}

func MakeWorkflowView(ent *WorkflowEntity) *view.Workflow {
	return &view.Workflow{
		Name:        ent.Name,
		Description: ent.Description,
	}
}
