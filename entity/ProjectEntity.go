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

import "time"

type ProjectEntity struct {
	tableName struct{} `pg:"project, alias:project"`

	Id               string     `pg:"id, pk, type:varchar"`
	Key              string     `pg:"key, type:varchar"`
	Name             string     `pg:"name, type:varchar"`
	WorkflowSchemeId string     `pg:"workflow_scheme_id, type:varchar"`
	DeletedAt        *time.Time `pg:"deleted_at, type:timestamp without time zone"`
}
