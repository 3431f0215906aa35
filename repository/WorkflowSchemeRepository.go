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
	"time"

	"github.com/trackspace/workflow-scheme-service/entity"
)

// WorkflowSchemeRepository persists active scheme records and their draft overlay
// records. It performs no validation and enforces no activation rules, callers are
// expected to have made those decisions already.
type WorkflowSchemeRepository interface {
	CreateScheme(ent *entity.WorkflowSchemeEntity) error
	UpdateScheme(ent *entity.WorkflowSchemeEntity) error
	GetSchemeById(id string) (*entity.WorkflowSchemeEntity, error)
	GetSchemeByName(name string) (*entity.WorkflowSchemeEntity, error)
	GetSchemes() ([]entity.WorkflowSchemeEntity, error)
	// DeleteScheme soft-deletes the scheme and removes its draft in one transaction.
	DeleteScheme(id string, userId string) error

	CreateDraft(ent *entity.WorkflowSchemeDraftEntity) error
	UpdateDraft(ent *entity.WorkflowSchemeDraftEntity) error
	GetDraft(schemeId string) (*entity.WorkflowSchemeDraftEntity, error)
	DeleteDraft(schemeId string) error

	// CleanupDeletedSchemes hard-deletes schemes soft-deleted before the given time
	// and returns the number of removed records.
	CleanupDeletedSchemes(deletedBefore time.Time) (int, error)
}
