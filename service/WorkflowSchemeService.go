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

package service

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/trackspace/workflow-scheme-service/context"
	"github.com/trackspace/workflow-scheme-service/entity"
	"github.com/trackspace/workflow-scheme-service/exception"
	"github.com/trackspace/workflow-scheme-service/metrics"
	"github.com/trackspace/workflow-scheme-service/repository"
	"github.com/trackspace/workflow-scheme-service/service/validation"
	"github.com/trackspace/workflow-scheme-service/view"
)

// WorkflowSchemeService orchestrates all scheme mutations. Changes to an assigned
// scheme's default workflow or issue type mappings never land on the active record
// directly, they are routed to the draft overlay (created on demand when the caller
// sets updateDraftIfNeeded). Name and description edits are exempt and mutate in
// place. Validation happens before any write, a failed mutation leaves both the
// active record and the draft untouched.
type WorkflowSchemeService interface {
	CreateScheme(ctx context.SecurityContext, scheme *view.WorkflowScheme) (*view.WorkflowScheme, error)
	GetSchemes() (*view.WorkflowSchemes, error)
	GetScheme(schemeId string, returnDraftIfExists bool) (*view.WorkflowScheme, error)
	UpdateScheme(ctx context.SecurityContext, schemeId string, update *view.WorkflowSchemeUpdate) (*view.WorkflowScheme, error)
	DeleteScheme(ctx context.SecurityContext, schemeId string) error

	CreateDraft(ctx context.SecurityContext, schemeId string) (*view.WorkflowScheme, error)
	GetDraft(schemeId string) (*view.WorkflowScheme, error)
	HasDraft(schemeId string) (bool, error)
	DiscardDraft(schemeId string) error

	GetWorkflowMappings(schemeId string, returnDraftIfExists bool) (*view.WorkflowMappings, error)
	GetWorkflowMapping(schemeId string, workflow string, returnDraftIfExists bool) (*view.WorkflowMapping, error)
	SetWorkflowMapping(ctx context.SecurityContext, schemeId string, workflow string, mapping *view.WorkflowMapping) (*view.WorkflowScheme, error)
	RemoveWorkflowMapping(ctx context.SecurityContext, schemeId string, workflow string, updateDraftIfNeeded bool) (*view.WorkflowScheme, error)

	GetIssueTypeMapping(schemeId string, issueType string, returnDraftIfExists bool) (*view.IssueTypeMapping, error)
	SetIssueTypeMapping(ctx context.SecurityContext, schemeId string, mapping *view.IssueTypeMapping) (*view.WorkflowScheme, error)
	RemoveIssueTypeMapping(ctx context.SecurityContext, schemeId string, issueType string, updateDraftIfNeeded bool) (*view.WorkflowScheme, error)

	GetDefaultWorkflow(schemeId string, returnDraftIfExists bool) (*view.DefaultMapping, error)
	SetDefaultWorkflow(ctx context.SecurityContext, schemeId string, workflow string, updateDraftIfNeeded bool) (*view.WorkflowScheme, error)
	RemoveDefaultWorkflow(ctx context.SecurityContext, schemeId string, updateDraftIfNeeded bool) (*view.WorkflowScheme, error)
}

func NewWorkflowSchemeService(schemeRepository repository.WorkflowSchemeRepository,
	projectRepository repository.ProjectRepository,
	workflowRepository repository.WorkflowRepository,
	issueTypeRepository repository.IssueTypeRepository,
	validator validation.WorkflowSchemeValidator) WorkflowSchemeService {
	return &workflowSchemeServiceImpl{
		schemeRepository:    schemeRepository,
		projectRepository:   projectRepository,
		workflowRepository:  workflowRepository,
		issueTypeRepository: issueTypeRepository,
		validator:           validator,
	}
}

type workflowSchemeServiceImpl struct {
	schemeRepository    repository.WorkflowSchemeRepository
	projectRepository   repository.ProjectRepository
	workflowRepository  repository.WorkflowRepository
	issueTypeRepository repository.IssueTypeRepository
	validator           validation.WorkflowSchemeValidator

	schemeLocks sync.Map
}

// lockScheme serializes mutations per scheme id. Activation check, draft creation,
// validation and commit all happen inside this lock so that two concurrent guarded
// mutations cannot create two drafts or interleave their writes.
func (w *workflowSchemeServiceImpl) lockScheme(schemeId string) func() {
	val, _ := w.schemeLocks.LoadOrStore(schemeId, &sync.Mutex{})
	mutex := val.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}

// schemeLayers holds the active record and, when present, the draft overlay.
type schemeLayers struct {
	active *entity.WorkflowSchemeEntity
	draft  *entity.WorkflowSchemeDraftEntity
}

// schemeState is a layer snapshot used to compute and compare mutation outcomes.
type schemeState struct {
	Name            string
	Description     string
	DefaultWorkflow string
	Mappings        map[string]string
}

func (w *workflowSchemeServiceImpl) getLayers(schemeId string) (*schemeLayers, error) {
	active, err := w.schemeRepository.GetSchemeById(schemeId)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.WorkflowSchemeNotFound,
			Message: exception.WorkflowSchemeNotFoundMsg,
			Params:  map[string]interface{}{"schemeId": schemeId},
		}
	}
	draft, err := w.schemeRepository.GetDraft(schemeId)
	if err != nil {
		return nil, err
	}
	return &schemeLayers{active: active, draft: draft}, nil
}

// baseState returns the state mutations are computed against, i.e. the draft if one
// exists and the active record otherwise.
func (l *schemeLayers) baseState() schemeState {
	if l.draft != nil {
		return schemeState{
			Name:            l.draft.Name,
			Description:     l.draft.Description,
			DefaultWorkflow: l.draft.DefaultWorkflow,
			Mappings:        cloneMappings(l.draft.Mappings),
		}
	}
	return schemeState{
		Name:            l.active.Name,
		Description:     l.active.Description,
		DefaultWorkflow: l.active.DefaultWorkflow,
		Mappings:        cloneMappings(l.active.Mappings),
	}
}

func (l *schemeLayers) currentView() *view.WorkflowScheme {
	if l.draft != nil {
		return entity.MakeWorkflowSchemeDraftView(l.draft, l.active)
	}
	return entity.MakeWorkflowSchemeView(l.active)
}

func (w *workflowSchemeServiceImpl) CreateScheme(ctx context.SecurityContext, scheme *view.WorkflowScheme) (*view.WorkflowScheme, error) {
	err := w.validator.ValidateScheme(validation.SchemeCandidate{
		Name:            scheme.Name,
		Description:     scheme.Description,
		DefaultWorkflow: scheme.DefaultWorkflow,
		Mappings:        scheme.IssueTypeMappings,
	})
	if err != nil {
		return nil, err
	}
	ent := entity.MakeWorkflowSchemeEntity(scheme, uuid.New().String(), ctx.GetUserId())
	err = w.schemeRepository.CreateScheme(ent)
	if err != nil {
		return nil, err
	}
	log.Infof("Workflow scheme %s ('%s') created", ent.Id, ent.Name)
	metrics.WorkflowSchemeMutationsTotal.WithLabelValues("create", "active").Inc()
	return entity.MakeWorkflowSchemeView(ent), nil
}

func (w *workflowSchemeServiceImpl) GetSchemes() (*view.WorkflowSchemes, error) {
	ents, err := w.schemeRepository.GetSchemes()
	if err != nil {
		return nil, err
	}
	schemes := make([]view.WorkflowScheme, 0, len(ents))
	for i := range ents {
		schemes = append(schemes, *entity.MakeWorkflowSchemeView(&ents[i]))
	}
	return &view.WorkflowSchemes{Schemes: schemes}, nil
}

func (w *workflowSchemeServiceImpl) GetScheme(schemeId string, returnDraftIfExists bool) (*view.WorkflowScheme, error) {
	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	if returnDraftIfExists && layers.draft != nil {
		return entity.MakeWorkflowSchemeDraftView(layers.draft, layers.active), nil
	}
	return entity.MakeWorkflowSchemeView(layers.active), nil
}

func (w *workflowSchemeServiceImpl) UpdateScheme(ctx context.SecurityContext, schemeId string, update *view.WorkflowSchemeUpdate) (*view.WorkflowScheme, error) {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}

	if update.HasSemanticChanges() {
		base := layers.baseState()
		desired := applyUpdate(base, update)
		if err := w.validateState(schemeId, desired); err != nil {
			return nil, err
		}
		if statesEqual(base, desired) {
			return layers.currentView(), nil
		}
		return w.commit(ctx, "update", layers, desired, update.UpdateDraftIfNeeded)
	}

	// Name and description edits are cosmetic, they bypass the activation guard.
	// With an existing draft and updateDraftIfNeeded they land on the draft,
	// otherwise they mutate the addressed record in place.
	targetDraft := layers.draft != nil && update.UpdateDraftIfNeeded
	var base schemeState
	if targetDraft {
		base = layers.baseState()
	} else {
		base = schemeState{
			Name:            layers.active.Name,
			Description:     layers.active.Description,
			DefaultWorkflow: layers.active.DefaultWorkflow,
			Mappings:        cloneMappings(layers.active.Mappings),
		}
	}
	desired := applyUpdate(base, update)
	if err := w.validateState(schemeId, desired); err != nil {
		return nil, err
	}
	if statesEqual(base, desired) {
		if targetDraft {
			return entity.MakeWorkflowSchemeDraftView(layers.draft, layers.active), nil
		}
		return entity.MakeWorkflowSchemeView(layers.active), nil
	}
	if targetDraft {
		applyToDraft(layers.draft, desired, ctx.GetUserId())
		if err := w.schemeRepository.UpdateDraft(layers.draft); err != nil {
			return nil, err
		}
		metrics.WorkflowSchemeMutationsTotal.WithLabelValues("update", "draft").Inc()
		return entity.MakeWorkflowSchemeDraftView(layers.draft, layers.active), nil
	}
	applyToActive(layers.active, desired, ctx.GetUserId())
	if err := w.schemeRepository.UpdateScheme(layers.active); err != nil {
		return nil, err
	}
	metrics.WorkflowSchemeMutationsTotal.WithLabelValues("update", "active").Inc()
	return entity.MakeWorkflowSchemeView(layers.active), nil
}

func (w *workflowSchemeServiceImpl) DeleteScheme(ctx context.SecurityContext, schemeId string) error {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return err
	}
	assigned, err := w.projectRepository.IsWorkflowSchemeAssigned(schemeId)
	if err != nil {
		return err
	}
	if assigned {
		return &exception.CustomError{
			Status:  http.StatusConflict,
			Code:    exception.WorkflowSchemeDeletionRestricted,
			Message: exception.WorkflowSchemeDeletionRestrictedMsg,
			Params:  map[string]interface{}{"schemeId": schemeId},
		}
	}
	err = w.schemeRepository.DeleteScheme(schemeId, ctx.GetUserId())
	if err != nil {
		return err
	}
	log.Infof("Workflow scheme %s ('%s') deleted", schemeId, layers.active.Name)
	metrics.WorkflowSchemeMutationsTotal.WithLabelValues("delete", "active").Inc()
	return nil
}

func (w *workflowSchemeServiceImpl) CreateDraft(ctx context.SecurityContext, schemeId string) (*view.WorkflowScheme, error) {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	if layers.draft != nil {
		return nil, &exception.CustomError{
			Status:  http.StatusConflict,
			Code:    exception.WorkflowSchemeDraftAlreadyExists,
			Message: exception.WorkflowSchemeDraftAlreadyExistsMsg,
			Params:  map[string]interface{}{"schemeId": schemeId},
		}
	}
	draft := entity.MakeWorkflowSchemeDraftEntity(layers.active, ctx.GetUserId())
	err = w.schemeRepository.CreateDraft(draft)
	if err != nil {
		return nil, err
	}
	metrics.WorkflowSchemeMutationsTotal.WithLabelValues("createDraft", "draft").Inc()
	return entity.MakeWorkflowSchemeDraftView(draft, layers.active), nil
}

func (w *workflowSchemeServiceImpl) GetDraft(schemeId string) (*view.WorkflowScheme, error) {
	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	if layers.draft == nil {
		return nil, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.WorkflowSchemeDraftNotFound,
			Message: exception.WorkflowSchemeDraftNotFoundMsg,
			Params:  map[string]interface{}{"schemeId": schemeId},
		}
	}
	return entity.MakeWorkflowSchemeDraftView(layers.draft, layers.active), nil
}

func (w *workflowSchemeServiceImpl) HasDraft(schemeId string) (bool, error) {
	layers, err := w.getLayers(schemeId)
	if err != nil {
		return false, err
	}
	return layers.draft != nil, nil
}

// DiscardDraft is idempotent, discarding a scheme without a draft is not an error.
func (w *workflowSchemeServiceImpl) DiscardDraft(schemeId string) error {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return err
	}
	if layers.draft == nil {
		return nil
	}
	err = w.schemeRepository.DeleteDraft(schemeId)
	if err != nil {
		return err
	}
	metrics.WorkflowSchemeMutationsTotal.WithLabelValues("discardDraft", "draft").Inc()
	return nil
}

func (w *workflowSchemeServiceImpl) GetWorkflowMappings(schemeId string, returnDraftIfExists bool) (*view.WorkflowMappings, error) {
	state, err := w.readState(schemeId, returnDraftIfExists)
	if err != nil {
		return nil, err
	}
	byWorkflow := map[string][]string{}
	for issueType, workflow := range state.Mappings {
		byWorkflow[workflow] = append(byWorkflow[workflow], issueType)
	}
	defaultWorkflow := resolveDefaultWorkflow(state.DefaultWorkflow)
	if _, present := byWorkflow[defaultWorkflow]; !present {
		byWorkflow[defaultWorkflow] = []string{}
	}
	workflows := make([]string, 0, len(byWorkflow))
	for workflow := range byWorkflow {
		workflows = append(workflows, workflow)
	}
	sort.Strings(workflows)
	mappings := make([]view.WorkflowMapping, 0, len(workflows))
	for _, workflow := range workflows {
		issueTypes := byWorkflow[workflow]
		sort.Strings(issueTypes)
		isDefault := workflow == defaultWorkflow
		mappings = append(mappings, view.WorkflowMapping{
			Workflow:       workflow,
			IssueTypes:     &issueTypes,
			DefaultMapping: &isDefault,
		})
	}
	return &view.WorkflowMappings{Mappings: mappings}, nil
}

func (w *workflowSchemeServiceImpl) GetWorkflowMapping(schemeId string, workflow string, returnDraftIfExists bool) (*view.WorkflowMapping, error) {
	if err := w.checkWorkflowExists(workflow); err != nil {
		return nil, err
	}
	state, err := w.readState(schemeId, returnDraftIfExists)
	if err != nil {
		return nil, err
	}
	issueTypes := []string{}
	for issueType, mapped := range state.Mappings {
		if mapped == workflow {
			issueTypes = append(issueTypes, issueType)
		}
	}
	sort.Strings(issueTypes)
	isDefault := workflow == resolveDefaultWorkflow(state.DefaultWorkflow)
	return &view.WorkflowMapping{
		Workflow:       workflow,
		IssueTypes:     &issueTypes,
		DefaultMapping: &isDefault,
	}, nil
}

// SetWorkflowMapping replaces the set of issue types assigned to the workflow and,
// when DefaultMapping is set, makes it the default (or clears the default when the
// workflow currently holds it).
func (w *workflowSchemeServiceImpl) SetWorkflowMapping(ctx context.SecurityContext, schemeId string, workflow string, mapping *view.WorkflowMapping) (*view.WorkflowScheme, error) {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	if err := w.checkWorkflowExists(workflow); err != nil {
		return nil, err
	}

	base := layers.baseState()
	desired := base
	desired.Mappings = cloneMappings(base.Mappings)

	if mapping.IssueTypes != nil {
		var findings []string
		for _, issueType := range *mapping.IssueTypes {
			exists, err := w.issueTypeRepository.IssueTypeExists(issueType)
			if err != nil {
				return nil, err
			}
			if !exists {
				findings = append(findings, fmt.Sprintf("issueTypes: issue type '%s' does not exist", issueType))
			}
		}
		if len(findings) > 0 {
			return nil, &exception.CustomError{
				Status:  http.StatusBadRequest,
				Code:    exception.WorkflowSchemeInvalid,
				Message: exception.WorkflowSchemeInvalidMsg,
				Params:  map[string]interface{}{"errors": strings.Join(findings, "; ")},
			}
		}
		for issueType, mapped := range base.Mappings {
			if mapped == workflow {
				delete(desired.Mappings, issueType)
			}
		}
		for _, issueType := range *mapping.IssueTypes {
			desired.Mappings[issueType] = workflow
		}
	}
	if mapping.DefaultMapping != nil {
		if *mapping.DefaultMapping {
			desired.DefaultWorkflow = workflow
		} else if base.DefaultWorkflow == workflow {
			desired.DefaultWorkflow = ""
		}
	}

	if statesEqual(base, desired) {
		return layers.currentView(), nil
	}
	return w.commit(ctx, "setWorkflowMapping", layers, desired, mapping.UpdateDraftIfNeeded)
}

// RemoveWorkflowMapping unassigns every issue type mapped to the workflow. When the
// workflow is the explicit default the default is cleared as well.
func (w *workflowSchemeServiceImpl) RemoveWorkflowMapping(ctx context.SecurityContext, schemeId string, workflow string, updateDraftIfNeeded bool) (*view.WorkflowScheme, error) {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	if err := w.checkWorkflowExists(workflow); err != nil {
		return nil, err
	}

	base := layers.baseState()
	desired := base
	desired.Mappings = cloneMappings(base.Mappings)
	for issueType, mapped := range base.Mappings {
		if mapped == workflow {
			delete(desired.Mappings, issueType)
		}
	}
	if base.DefaultWorkflow == workflow {
		desired.DefaultWorkflow = ""
	}

	if statesEqual(base, desired) {
		return layers.currentView(), nil
	}
	return w.commit(ctx, "removeWorkflowMapping", layers, desired, updateDraftIfNeeded)
}

func (w *workflowSchemeServiceImpl) GetIssueTypeMapping(schemeId string, issueType string, returnDraftIfExists bool) (*view.IssueTypeMapping, error) {
	if err := w.checkIssueTypeExists(issueType); err != nil {
		return nil, err
	}
	state, err := w.readState(schemeId, returnDraftIfExists)
	if err != nil {
		return nil, err
	}
	return &view.IssueTypeMapping{
		IssueType: issueType,
		Workflow:  state.Mappings[issueType],
	}, nil
}

func (w *workflowSchemeServiceImpl) SetIssueTypeMapping(ctx context.SecurityContext, schemeId string, mapping *view.IssueTypeMapping) (*view.WorkflowScheme, error) {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	if err := w.checkIssueTypeExists(mapping.IssueType); err != nil {
		return nil, err
	}
	// an unknown workflow in the payload is a validation failure, not a missing resource
	var findings []string
	if mapping.Workflow == "" {
		findings = append(findings, "workflow: must not be empty")
	} else {
		exists, err := w.workflowRepository.WorkflowExists(mapping.Workflow)
		if err != nil {
			return nil, err
		}
		if !exists {
			findings = append(findings, fmt.Sprintf("issueTypeMappings[%s]: workflow '%s' does not exist", mapping.IssueType, mapping.Workflow))
		}
	}
	if len(findings) > 0 {
		return nil, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.WorkflowSchemeInvalid,
			Message: exception.WorkflowSchemeInvalidMsg,
			Params:  map[string]interface{}{"errors": strings.Join(findings, "; ")},
		}
	}

	base := layers.baseState()
	desired := base
	desired.Mappings = cloneMappings(base.Mappings)
	desired.Mappings[mapping.IssueType] = mapping.Workflow

	if statesEqual(base, desired) {
		return layers.currentView(), nil
	}
	return w.commit(ctx, "setIssueTypeMapping", layers, desired, mapping.UpdateDraftIfNeeded)
}

// RemoveIssueTypeMapping is idempotent, removing an unmapped issue type succeeds
// without touching the scheme.
func (w *workflowSchemeServiceImpl) RemoveIssueTypeMapping(ctx context.SecurityContext, schemeId string, issueType string, updateDraftIfNeeded bool) (*view.WorkflowScheme, error) {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	if err := w.checkIssueTypeExists(issueType); err != nil {
		return nil, err
	}

	base := layers.baseState()
	desired := base
	desired.Mappings = cloneMappings(base.Mappings)
	delete(desired.Mappings, issueType)

	if statesEqual(base, desired) {
		return layers.currentView(), nil
	}
	return w.commit(ctx, "removeIssueTypeMapping", layers, desired, updateDraftIfNeeded)
}

func (w *workflowSchemeServiceImpl) GetDefaultWorkflow(schemeId string, returnDraftIfExists bool) (*view.DefaultMapping, error) {
	state, err := w.readState(schemeId, returnDraftIfExists)
	if err != nil {
		return nil, err
	}
	return &view.DefaultMapping{Workflow: resolveDefaultWorkflow(state.DefaultWorkflow)}, nil
}

func (w *workflowSchemeServiceImpl) SetDefaultWorkflow(ctx context.SecurityContext, schemeId string, workflow string, updateDraftIfNeeded bool) (*view.WorkflowScheme, error) {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	var findings []string
	if workflow == "" {
		findings = append(findings, "workflow: must not be empty")
	} else {
		exists, err := w.workflowRepository.WorkflowExists(workflow)
		if err != nil {
			return nil, err
		}
		if !exists {
			findings = append(findings, fmt.Sprintf("defaultWorkflow: workflow '%s' does not exist", workflow))
		}
	}
	if len(findings) > 0 {
		return nil, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.WorkflowSchemeInvalid,
			Message: exception.WorkflowSchemeInvalidMsg,
			Params:  map[string]interface{}{"errors": strings.Join(findings, "; ")},
		}
	}

	base := layers.baseState()
	desired := base
	desired.Mappings = cloneMappings(base.Mappings)
	desired.DefaultWorkflow = workflow

	if statesEqual(base, desired) {
		return layers.currentView(), nil
	}
	return w.commit(ctx, "setDefaultWorkflow", layers, desired, updateDraftIfNeeded)
}

func (w *workflowSchemeServiceImpl) RemoveDefaultWorkflow(ctx context.SecurityContext, schemeId string, updateDraftIfNeeded bool) (*view.WorkflowScheme, error) {
	unlock := w.lockScheme(schemeId)
	defer unlock()

	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	base := layers.baseState()
	desired := base
	desired.Mappings = cloneMappings(base.Mappings)
	desired.DefaultWorkflow = ""

	if statesEqual(base, desired) {
		return layers.currentView(), nil
	}
	return w.commit(ctx, "removeDefaultWorkflow", layers, desired, updateDraftIfNeeded)
}

// commit routes an already validated state change. An existing draft absorbs the
// change. Otherwise an assigned scheme requires updateDraftIfNeeded, which creates
// the draft and applies the change there, while an unassigned scheme is mutated in
// place.
func (w *workflowSchemeServiceImpl) commit(ctx context.SecurityContext, operation string, layers *schemeLayers, desired schemeState, updateDraftIfNeeded bool) (*view.WorkflowScheme, error) {
	if layers.draft != nil {
		applyToDraft(layers.draft, desired, ctx.GetUserId())
		if err := w.schemeRepository.UpdateDraft(layers.draft); err != nil {
			return nil, err
		}
		metrics.WorkflowSchemeMutationsTotal.WithLabelValues(operation, "draft").Inc()
		return entity.MakeWorkflowSchemeDraftView(layers.draft, layers.active), nil
	}

	assigned, err := w.projectRepository.IsWorkflowSchemeAssigned(layers.active.Id)
	if err != nil {
		return nil, err
	}
	if assigned {
		if !updateDraftIfNeeded {
			return nil, &exception.CustomError{
				Status:  http.StatusConflict,
				Code:    exception.WorkflowSchemeModificationRestricted,
				Message: exception.WorkflowSchemeModificationRestrictedMsg,
				Params:  map[string]interface{}{"schemeId": layers.active.Id},
			}
		}
		draft := entity.MakeWorkflowSchemeDraftEntity(layers.active, ctx.GetUserId())
		applyToDraft(draft, desired, ctx.GetUserId())
		if err := w.schemeRepository.CreateDraft(draft); err != nil {
			return nil, err
		}
		layers.draft = draft
		log.Debugf("Draft created for assigned workflow scheme %s (%s)", layers.active.Id, operation)
		metrics.WorkflowSchemeMutationsTotal.WithLabelValues(operation, "draft").Inc()
		return entity.MakeWorkflowSchemeDraftView(draft, layers.active), nil
	}

	applyToActive(layers.active, desired, ctx.GetUserId())
	if err := w.schemeRepository.UpdateScheme(layers.active); err != nil {
		return nil, err
	}
	metrics.WorkflowSchemeMutationsTotal.WithLabelValues(operation, "active").Inc()
	return entity.MakeWorkflowSchemeView(layers.active), nil
}

func (w *workflowSchemeServiceImpl) readState(schemeId string, returnDraftIfExists bool) (*schemeState, error) {
	layers, err := w.getLayers(schemeId)
	if err != nil {
		return nil, err
	}
	var state schemeState
	if returnDraftIfExists && layers.draft != nil {
		state = layers.baseState()
	} else {
		state = schemeState{
			Name:            layers.active.Name,
			Description:     layers.active.Description,
			DefaultWorkflow: layers.active.DefaultWorkflow,
			Mappings:        cloneMappings(layers.active.Mappings),
		}
	}
	return &state, nil
}

func (w *workflowSchemeServiceImpl) validateState(schemeId string, state schemeState) error {
	return w.validator.ValidateScheme(validation.SchemeCandidate{
		Id:              schemeId,
		Name:            state.Name,
		Description:     state.Description,
		DefaultWorkflow: state.DefaultWorkflow,
		Mappings:        state.Mappings,
	})
}

func (w *workflowSchemeServiceImpl) checkWorkflowExists(workflow string) error {
	exists, err := w.workflowRepository.WorkflowExists(workflow)
	if err != nil {
		return err
	}
	if !exists {
		return &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.WorkflowNotFound,
			Message: exception.WorkflowNotFoundMsg,
			Params:  map[string]interface{}{"workflow": workflow},
		}
	}
	return nil
}

func (w *workflowSchemeServiceImpl) checkIssueTypeExists(issueType string) error {
	exists, err := w.issueTypeRepository.IssueTypeExists(issueType)
	if err != nil {
		return err
	}
	if !exists {
		return &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.IssueTypeNotFound,
			Message: exception.IssueTypeNotFoundMsg,
			Params:  map[string]interface{}{"issueType": issueType},
		}
	}
	return nil
}

func applyUpdate(base schemeState, update *view.WorkflowSchemeUpdate) schemeState {
	desired := base
	desired.Mappings = cloneMappings(base.Mappings)
	if update.Name != nil {
		desired.Name = *update.Name
	}
	if update.Description != nil {
		desired.Description = *update.Description
	}
	if update.DefaultWorkflow != nil {
		desired.DefaultWorkflow = *update.DefaultWorkflow
	}
	if update.IssueTypeMappings != nil {
		desired.Mappings = cloneMappings(*update.IssueTypeMappings)
	}
	return desired
}

func applyToDraft(draft *entity.WorkflowSchemeDraftEntity, state schemeState, userId string) {
	draft.Name = state.Name
	draft.Description = state.Description
	draft.DefaultWorkflow = state.DefaultWorkflow
	draft.Mappings = state.Mappings
	draft.LastModified = time.Now()
	draft.LastModifiedBy = userId
}

func applyToActive(active *entity.WorkflowSchemeEntity, state schemeState, userId string) {
	active.Name = state.Name
	active.Description = state.Description
	active.DefaultWorkflow = state.DefaultWorkflow
	active.Mappings = state.Mappings
	active.LastModified = time.Now()
	active.LastModifiedBy = userId
}

func statesEqual(a, b schemeState) bool {
	if a.Name != b.Name || a.Description != b.Description || a.DefaultWorkflow != b.DefaultWorkflow {
		return false
	}
	if len(a.Mappings) != len(b.Mappings) {
		return false
	}
	for issueType, workflow := range a.Mappings {
		if b.Mappings[issueType] != workflow {
			return false
		}
	}
	return true
}

func resolveDefaultWorkflow(defaultWorkflow string) string {
	if defaultWorkflow == "" {
		return view.SystemDefaultWorkflowName
	}
	return defaultWorkflow
}

func cloneMappings(src map[string]string) map[string]string {
	result := make(map[string]string, len(src))
	for issueType, workflow := range src {
		result[issueType] = workflow
	}
	return result
}
