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
	"github.com/go-pg/pg/v10"
	"github.com/trackspace/workflow-scheme-service/db"
	"github.com/trackspace/workflow-scheme-service/entity"
)

// WorkflowRepository is the read-only catalog of workflows known to the system.
type WorkflowRepository interface {
	WorkflowExists(name string) (bool, error)
	GetWorkflowByName(name string) (*entity.WorkflowEntity, error)
	GetWorkflows() ([]entity.WorkflowEntity, error)
}

func NewWorkflowRepositoryPG(cp db.ConnectionProvider) WorkflowRepository {
	return &workflowRepositoryImpl{cp: cp}
}

type workflowRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (w workflowRepositoryImpl) WorkflowExists(name string) (bool, error) {
	ent := new(entity.WorkflowEntity)
	count, err := w.cp.GetConnection().Model(ent).
		Where("name = ?", name).
		Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (w workflowRepositoryImpl) GetWorkflowByName(name string) (*entity.WorkflowEntity, error) {
	result := new(entity.WorkflowEntity)
	err := w.cp.GetConnection().Model(result).
		Where("name = ?", name).
		First()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

func (w workflowRepositoryImpl) GetWorkflows() ([]entity.WorkflowEntity, error) {
	var result []entity.WorkflowEntity
	err := w.cp.GetConnection().Model(&result).
		Order("name ASC").
		Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}
