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

// IssueTypeRepository is the read-only catalog of issue types known to the system.
type IssueTypeRepository interface {
	IssueTypeExists(id string) (bool, error)
	GetIssueTypeById(id string) (*entity.IssueTypeEntity, error)
	GetIssueTypes() ([]entity.IssueTypeEntity, error)
}

func NewIssueTypeRepositoryPG(cp db.ConnectionProvider) IssueTypeRepository {
	return &issueTypeRepositoryImpl{cp: cp}
}

type issueTypeRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (i issueTypeRepositoryImpl) IssueTypeExists(id string) (bool, error) {
	ent := new(entity.IssueTypeEntity)
	count, err := i.cp.GetConnection().Model(ent).
		Where("id = ?", id).
		Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (i issueTypeRepositoryImpl) GetIssueTypeById(id string) (*entity.IssueTypeEntity, error) {
	result := new(entity.IssueTypeEntity)
	err := i.cp.GetConnection().Model(result).
		Where("id = ?", id).
		First()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

func (i issueTypeRepositoryImpl) GetIssueTypes() ([]entity.IssueTypeEntity, error) {
	var result []entity.IssueTypeEntity
	err := i.cp.GetConnection().Model(&result).
		Order("id ASC").
		Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}
