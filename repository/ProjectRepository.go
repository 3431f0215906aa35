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

package repository

import (
	"github.com/trackspace/workflow-scheme-service/db"
	"github.com/trackspace/workflow-scheme-service/entity"
)

// ProjectRepository answers whether a workflow scheme is in use. The result is
// queried fresh on every call, activation state is never cached.
type ProjectRepository interface {
	IsWorkflowSchemeAssigned(schemeId string) (bool, error)
}

func NewProjectRepositoryPG(cp db.ConnectionProvider) ProjectRepository {
	return &projectRepositoryImpl{cp: cp}
}

type projectRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (p projectRepositoryImpl) IsWorkflowSchemeAssigned(schemeId string) (bool, error) {
	ent := new(entity.ProjectEntity)
	count, err := p.cp.GetConnection().Model(ent).
		Where("workflow_scheme_id = ?", schemeId).
		Where("deleted_at is ?", nil).
		Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
