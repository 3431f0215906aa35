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

type IssueTypeEntity struct {
	tableName struct{} `pg:"issue_type, alias:issue_type"`

	Id   string `pg:"id, pk, type:varchar"`
	Name string `pg:"name, type:varchar"`
}

func MakeIssueTypeView(ent *IssueTypeEntity) *view.IssueType {
	return &view.IssueType{
		Id:   ent.Id,
		Name: ent.Name,
	}
}
