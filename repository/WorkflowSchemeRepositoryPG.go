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
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	"github.com/trackspace/workflow-scheme-service/db"
	"github.com/trackspace/workflow-scheme-service/entity"
)

func NewWorkflowSchemeRepositoryPG(cp db.ConnectionProvider) WorkflowSchemeRepository {
	return &workflowSchemeRepositoryImpl{cp: cp}
}

type workflowSchemeRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (w workflowSchemeRepositoryImpl) CreateScheme(ent *entity.WorkflowSchemeEntity) error {
	_, err := w.cp.GetConnection().Model(ent).Insert()
	return err
}

func (w workflowSchemeRepositoryImpl) UpdateScheme(ent *entity.WorkflowSchemeEntity) error {
	_, err := w.cp.GetConnection().Model(ent).
		Where("id = ?", ent.Id).
		Where("deleted_at is ?", nil).
		Update()
	return err
}

func (w workflowSchemeRepositoryImpl) GetSchemeById(id string) (*entity.WorkflowSchemeEntity, error) {
	result := new(entity.WorkflowSchemeEntity)
	err := w.cp.GetConnection().Model(result).
		Where("id = ?", id).
		Where("deleted_at is ?", nil).
		First()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

func (w workflowSchemeRepositoryImpl) GetSchemeByName(name string) (*entity.WorkflowSchemeEntity, error) {
	result := new(entity.WorkflowSchemeEntity)
	err := w.cp.GetConnection().Model(result).
		Where("name = ?", name).
		Where("deleted_at is ?", nil).
		First()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

func (w workflowSchemeRepositoryImpl) GetSchemes() ([]entity.WorkflowSchemeEntity, error) {
	var result []entity.WorkflowSchemeEntity
	err := w.cp.GetConnection().Model(&result).
		Where("deleted_at is ?", nil).
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

func (w workflowSchemeRepositoryImpl) DeleteScheme(id string, userId string) error {
	ctx := context.Background()
	return w.cp.GetConnection().RunInTransaction(ctx, func(tx *pg.Tx) error {
		timeNow := time.Now()
		ent := new(entity.WorkflowSchemeEntity)
		_, err := tx.Model(ent).
			Set("deleted_at = ?", timeNow).
			Set("deleted_by = ?", userId).
			Where("id = ?", id).
			Where("deleted_at is ?", nil).
			Update()
		if err != nil {
			return err
		}
		draft := new(entity.WorkflowSchemeDraftEntity)
		_, err = tx.Model(draft).
			Where("scheme_id = ?", id).
			Delete()
		return err
	})
}

func (w workflowSchemeRepositoryImpl) CreateDraft(ent *entity.WorkflowSchemeDraftEntity) error {
	_, err := w.cp.GetConnection().Model(ent).Insert()
	return err
}

func (w workflowSchemeRepositoryImpl) UpdateDraft(ent *entity.WorkflowSchemeDraftEntity) error {
	_, err := w.cp.GetConnection().Model(ent).
		Where("scheme_id = ?", ent.SchemeId).
		Update()
	return err
}

func (w workflowSchemeRepositoryImpl) GetDraft(schemeId string) (*entity.WorkflowSchemeDraftEntity, error) {
	result := new(entity.WorkflowSchemeDraftEntity)
	err := w.cp.GetConnection().Model(result).
		Where("scheme_id = ?", schemeId).
		First()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

func (w workflowSchemeRepositoryImpl) DeleteDraft(schemeId string) error {
	ent := new(entity.WorkflowSchemeDraftEntity)
	_, err := w.cp.GetConnection().Model(ent).
		Where("scheme_id = ?", schemeId).
		Delete()
	return err
}

func (w workflowSchemeRepositoryImpl) CleanupDeletedSchemes(deletedBefore time.Time) (int, error) {
	ent := new(entity.WorkflowSchemeEntity)
	result, err := w.cp.GetConnection().Model(ent).
		Where("deleted_at is not ?", nil).
		Where("deleted_at < ?", deletedBefore).
		Delete()
	if err != nil {
		return 0, errors.Wrap(err, "failed to remove soft deleted workflow schemes")
	}
	if result.RowsAffected() > 0 {
		_, err = w.cp.GetConnection().Exec("vacuum (analyze) workflow_scheme")
		if err != nil {
			return result.RowsAffected(), errors.Wrap(err, "failed to run vacuum for table workflow_scheme")
		}
	}
	return result.RowsAffected(), nil
}
