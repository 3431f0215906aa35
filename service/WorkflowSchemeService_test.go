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
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/trackspace/workflow-scheme-service/context"
	"github.com/trackspace/workflow-scheme-service/entity"
	"github.com/trackspace/workflow-scheme-service/exception"
	"github.com/trackspace/workflow-scheme-service/service/validation"
	"github.com/trackspace/workflow-scheme-service/view"
)

type schemeRepositoryMock struct {
	mutex   sync.Mutex
	schemes map[string]entity.WorkflowSchemeEntity
	drafts  map[string]entity.WorkflowSchemeDraftEntity
}

func newSchemeRepositoryMock() *schemeRepositoryMock {
	return &schemeRepositoryMock{
		schemes: map[string]entity.WorkflowSchemeEntity{},
		drafts:  map[string]entity.WorkflowSchemeDraftEntity{},
	}
}

func (m *schemeRepositoryMock) CreateScheme(ent *entity.WorkflowSchemeEntity) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.schemes[ent.Id] = *ent
	return nil
}

func (m *schemeRepositoryMock) UpdateScheme(ent *entity.WorkflowSchemeEntity) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.schemes[ent.Id] = *ent
	return nil
}

func (m *schemeRepositoryMock) GetSchemeById(id string) (*entity.WorkflowSchemeEntity, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	ent, exists := m.schemes[id]
	if !exists || ent.DeletedAt != nil {
		return nil, nil
	}
	result := ent
	return &result, nil
}

func (m *schemeRepositoryMock) GetSchemeByName(name string) (*entity.WorkflowSchemeEntity, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, ent := range m.schemes {
		if ent.Name == name && ent.DeletedAt == nil {
			result := ent
			return &result, nil
		}
	}
	return nil, nil
}

func (m *schemeRepositoryMock) GetSchemes() ([]entity.WorkflowSchemeEntity, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var result []entity.WorkflowSchemeEntity
	for _, ent := range m.schemes {
		if ent.DeletedAt == nil {
			result = append(result, ent)
		}
	}
	return result, nil
}

func (m *schemeRepositoryMock) DeleteScheme(id string, userId string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	ent, exists := m.schemes[id]
	if exists {
		timeNow := time.Now()
		ent.DeletedAt = &timeNow
		ent.DeletedBy = userId
		m.schemes[id] = ent
	}
	delete(m.drafts, id)
	return nil
}

func (m *schemeRepositoryMock) CreateDraft(ent *entity.WorkflowSchemeDraftEntity) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.drafts[ent.SchemeId] = *ent
	return nil
}

func (m *schemeRepositoryMock) UpdateDraft(ent *entity.WorkflowSchemeDraftEntity) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.drafts[ent.SchemeId] = *ent
	return nil
}

func (m *schemeRepositoryMock) GetDraft(schemeId string) (*entity.WorkflowSchemeDraftEntity, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	ent, exists := m.drafts[schemeId]
	if !exists {
		return nil, nil
	}
	result := ent
	return &result, nil
}

func (m *schemeRepositoryMock) DeleteDraft(schemeId string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.drafts, schemeId)
	return nil
}

func (m *schemeRepositoryMock) CleanupDeletedSchemes(deletedBefore time.Time) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	removed := 0
	for id, ent := range m.schemes {
		if ent.DeletedAt != nil && ent.DeletedAt.Before(deletedBefore) {
			delete(m.schemes, id)
			removed++
		}
	}
	return removed, nil
}

func (m *schemeRepositoryMock) draftCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.drafts)
}

type workflowRepositoryMock struct {
	workflows map[string]string
}

func (m *workflowRepositoryMock) WorkflowExists(name string) (bool, error) {
	_, exists := m.workflows[name]
	return exists, nil
}

func (m *workflowRepositoryMock) GetWorkflowByName(name string) (*entity.WorkflowEntity, error) {
	description, exists := m.workflows[name]
	if !exists {
		return nil, nil
	}
	return &entity.WorkflowEntity{Name: name, Description: description}, nil
}

func (m *workflowRepositoryMock) GetWorkflows() ([]entity.WorkflowEntity, error) {
	var result []entity.WorkflowEntity
	for name, description := range m.workflows {
		result = append(result, entity.WorkflowEntity{Name: name, Description: description})
	}
	return result, nil
}

type issueTypeRepositoryMock struct {
	issueTypes map[string]string
}

func (m *issueTypeRepositoryMock) IssueTypeExists(id string) (bool, error) {
	_, exists := m.issueTypes[id]
	return exists, nil
}

func (m *issueTypeRepositoryMock) GetIssueTypeById(id string) (*entity.IssueTypeEntity, error) {
	name, exists := m.issueTypes[id]
	if !exists {
		return nil, nil
	}
	return &entity.IssueTypeEntity{Id: id, Name: name}, nil
}

func (m *issueTypeRepositoryMock) GetIssueTypes() ([]entity.IssueTypeEntity, error) {
	var result []entity.IssueTypeEntity
	for id, name := range m.issueTypes {
		result = append(result, entity.IssueTypeEntity{Id: id, Name: name})
	}
	return result, nil
}

type projectRepositoryMock struct {
	assigned map[string]bool
}

func (m *projectRepositoryMock) IsWorkflowSchemeAssigned(schemeId string) (bool, error) {
	return m.assigned[schemeId], nil
}

type schemeServiceFixture struct {
	service    WorkflowSchemeService
	schemeRepo *schemeRepositoryMock
	projects   *projectRepositoryMock
}

func newSchemeServiceFixture() *schemeServiceFixture {
	schemeRepo := newSchemeRepositoryMock()
	workflowRepo := &workflowRepositoryMock{workflows: map[string]string{
		"classic":  "classic workflow",
		"simple":   "simplified workflow",
		"security": "security review workflow",
	}}
	issueTypeRepo := &issueTypeRepositoryMock{issueTypes: map[string]string{
		"1": "Bug",
		"2": "Task",
		"3": "Improvement",
	}}
	projects := &projectRepositoryMock{assigned: map[string]bool{}}
	validator := validation.NewWorkflowSchemeValidator(schemeRepo, workflowRepo, issueTypeRepo)
	return &schemeServiceFixture{
		service:    NewWorkflowSchemeService(schemeRepo, projects, workflowRepo, issueTypeRepo, validator),
		schemeRepo: schemeRepo,
		projects:   projects,
	}
}

func (f *schemeServiceFixture) createScheme(t *testing.T, scheme view.WorkflowScheme) *view.WorkflowScheme {
	t.Helper()
	result, err := f.service.CreateScheme(context.CreateFromId("tester"), &scheme)
	if err != nil {
		t.Fatalf("failed to create scheme: %v", err)
	}
	return result
}

func assertCustomError(t *testing.T, err error, status int, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d and code %s, got nil", status, code)
	}
	customErr, ok := err.(*exception.CustomError)
	if !ok {
		t.Fatalf("expected CustomError, got %T: %v", err, err)
	}
	if customErr.Status != status {
		t.Errorf("expected status %d, got %d (%v)", status, customErr.Status, customErr)
	}
	if customErr.Code != code {
		t.Errorf("expected code %s, got %s (%v)", code, customErr.Code, customErr)
	}
}

func TestCreateSchemeRoundTrip(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{
		Name:              "Default scheme",
		Description:       "the one and only",
		DefaultWorkflow:   "classic",
		IssueTypeMappings: map[string]string{"1": "simple"},
	})
	if created.Id == "" {
		t.Fatalf("expected generated scheme id")
	}
	if created.Draft {
		t.Errorf("freshly created scheme must not be a draft")
	}
	got, err := f.service.GetScheme(created.Id, false)
	if err != nil {
		t.Fatalf("failed to get scheme: %v", err)
	}
	if got.Name != "Default scheme" || got.Description != "the one and only" {
		t.Errorf("unexpected scheme read: %+v", got)
	}
	if got.DefaultWorkflow != "classic" {
		t.Errorf("expected default workflow 'classic', got %s", got.DefaultWorkflow)
	}
	if got.IssueTypeMappings["1"] != "simple" {
		t.Errorf("unexpected issue type mappings: %v", got.IssueTypeMappings)
	}
}

func TestCreateSchemeDuplicateName(t *testing.T) {
	f := newSchemeServiceFixture()
	f.createScheme(t, view.WorkflowScheme{Name: "Duplicated"})
	_, err := f.service.CreateScheme(context.CreateFromId("tester"), &view.WorkflowScheme{Name: "Duplicated"})
	assertCustomError(t, err, http.StatusConflict, exception.WorkflowSchemeNameAlreadyExists)
}

func TestCreateSchemeValidationAccumulatesErrors(t *testing.T) {
	f := newSchemeServiceFixture()
	_, err := f.service.CreateScheme(context.CreateFromId("tester"), &view.WorkflowScheme{
		Name:              "Broken",
		DefaultWorkflow:   "no-such-workflow",
		IssueTypeMappings: map[string]string{"99": "also-missing"},
	})
	assertCustomError(t, err, http.StatusBadRequest, exception.WorkflowSchemeInvalid)
	customErr := err.(*exception.CustomError)
	findings, _ := customErr.Params["errors"].(string)
	for _, expected := range []string{"no-such-workflow", "99", "also-missing"} {
		if !strings.Contains(findings, expected) {
			t.Errorf("expected findings to mention %q, got %q", expected, findings)
		}
	}
}

func TestDefaultWorkflowFallback(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "No default"})
	got, err := f.service.GetScheme(created.Id, false)
	if err != nil {
		t.Fatalf("failed to get scheme: %v", err)
	}
	if got.DefaultWorkflow != view.SystemDefaultWorkflowName {
		t.Errorf("expected system default fallback, got %q", got.DefaultWorkflow)
	}
	defaultMapping, err := f.service.GetDefaultWorkflow(created.Id, false)
	if err != nil {
		t.Fatalf("failed to get default workflow: %v", err)
	}
	if defaultMapping.Workflow != view.SystemDefaultWorkflowName {
		t.Errorf("expected system default fallback, got %q", defaultMapping.Workflow)
	}
}

func TestGuardedMutationWithoutFlagConflicts(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Assigned", DefaultWorkflow: "classic"})
	f.projects.assigned[created.Id] = true

	_, err := f.service.SetDefaultWorkflow(context.CreateFromId("tester"), created.Id, "simple", false)
	assertCustomError(t, err, http.StatusConflict, exception.WorkflowSchemeModificationRestricted)

	if f.schemeRepo.draftCount() != 0 {
		t.Errorf("rejected mutation must not create a draft")
	}
	got, _ := f.service.GetScheme(created.Id, false)
	if got.DefaultWorkflow != "classic" {
		t.Errorf("rejected mutation must not modify the active scheme, got default %q", got.DefaultWorkflow)
	}
}

func TestGuardedMutationCreatesDraft(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{
		Name:              "Assigned",
		DefaultWorkflow:   "classic",
		IssueTypeMappings: map[string]string{"1": "classic"},
	})
	f.projects.assigned[created.Id] = true

	result, err := f.service.SetIssueTypeMapping(context.CreateFromId("editor"), created.Id, &view.IssueTypeMapping{
		IssueType:           "2",
		Workflow:            "simple",
		UpdateDraftIfNeeded: true,
	})
	if err != nil {
		t.Fatalf("guarded mutation with updateDraftIfNeeded failed: %v", err)
	}
	if !result.Draft {
		t.Fatalf("expected mutation to land on a draft")
	}
	if result.IssueTypeMappings["2"] != "simple" {
		t.Errorf("draft does not carry the change: %v", result.IssueTypeMappings)
	}
	if result.OriginalIssueTypeMappings["2"] != "" {
		t.Errorf("original mappings must reflect the untouched parent: %v", result.OriginalIssueTypeMappings)
	}
	if result.LastModified == nil || result.LastModifiedUser != "editor" {
		t.Errorf("draft view must carry modification info, got %v / %q", result.LastModified, result.LastModifiedUser)
	}

	active, _ := f.service.GetScheme(created.Id, false)
	if _, mapped := active.IssueTypeMappings["2"]; mapped {
		t.Errorf("active scheme must stay untouched while the draft absorbs changes")
	}
	withDraft, _ := f.service.GetScheme(created.Id, true)
	if !withDraft.Draft {
		t.Errorf("returnDraftIfExists must surface the draft")
	}
}

func TestDraftAbsorbsSubsequentMutations(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Assigned", DefaultWorkflow: "classic"})
	f.projects.assigned[created.Id] = true

	if _, err := f.service.SetDefaultWorkflow(context.CreateFromId("tester"), created.Id, "simple", true); err != nil {
		t.Fatalf("failed to create draft via mutation: %v", err)
	}
	// the flag is not required anymore once the draft exists
	result, err := f.service.SetIssueTypeMapping(context.CreateFromId("tester"), created.Id, &view.IssueTypeMapping{
		IssueType: "1",
		Workflow:  "security",
	})
	if err != nil {
		t.Fatalf("mutation with existing draft failed: %v", err)
	}
	if !result.Draft {
		t.Fatalf("mutation must land on the existing draft")
	}
	if f.schemeRepo.draftCount() != 1 {
		t.Errorf("expected a single draft, got %d", f.schemeRepo.draftCount())
	}
	active, _ := f.service.GetScheme(created.Id, false)
	if active.DefaultWorkflow != "classic" || len(active.IssueTypeMappings) != 0 {
		t.Errorf("active scheme changed unexpectedly: %+v", active)
	}
}

func TestCosmeticUpdateBypassesGuard(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Assigned", Description: "before"})
	f.projects.assigned[created.Id] = true

	newName := "Renamed"
	emptyDescription := ""
	result, err := f.service.UpdateScheme(context.CreateFromId("tester"), created.Id, &view.WorkflowSchemeUpdate{
		Name:        &newName,
		Description: &emptyDescription,
	})
	if err != nil {
		t.Fatalf("cosmetic update on assigned scheme failed: %v", err)
	}
	if result.Draft {
		t.Errorf("cosmetic update must not create a draft")
	}
	if result.Name != "Renamed" || result.Description != "" {
		t.Errorf("unexpected update result: %+v", result)
	}
	if f.schemeRepo.draftCount() != 0 {
		t.Errorf("cosmetic update must not create a draft")
	}
}

func TestSemanticUpdateWithoutFlagConflicts(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Assigned"})
	f.projects.assigned[created.Id] = true

	newDefault := "simple"
	_, err := f.service.UpdateScheme(context.CreateFromId("tester"), created.Id, &view.WorkflowSchemeUpdate{
		DefaultWorkflow: &newDefault,
	})
	assertCustomError(t, err, http.StatusConflict, exception.WorkflowSchemeModificationRestricted)
}

func TestInvalidUpdateLeavesStorageUntouched(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Assigned"})
	f.projects.assigned[created.Id] = true

	badDefault := "no-such-workflow"
	_, err := f.service.UpdateScheme(context.CreateFromId("tester"), created.Id, &view.WorkflowSchemeUpdate{
		DefaultWorkflow:     &badDefault,
		UpdateDraftIfNeeded: true,
	})
	assertCustomError(t, err, http.StatusBadRequest, exception.WorkflowSchemeInvalid)
	if f.schemeRepo.draftCount() != 0 {
		t.Errorf("failed validation must not create a draft")
	}
}

func TestNoOpMutationSucceedsWithoutDraft(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{
		Name:              "Assigned",
		IssueTypeMappings: map[string]string{"1": "classic"},
	})
	f.projects.assigned[created.Id] = true

	result, err := f.service.SetIssueTypeMapping(context.CreateFromId("tester"), created.Id, &view.IssueTypeMapping{
		IssueType: "1",
		Workflow:  "classic",
	})
	if err != nil {
		t.Fatalf("no-op mutation on assigned scheme failed: %v", err)
	}
	if result.Draft {
		t.Errorf("no-op mutation must not create a draft")
	}

	// removing an unmapped issue type is a no-op as well
	result, err = f.service.RemoveIssueTypeMapping(context.CreateFromId("tester"), created.Id, "3", false)
	if err != nil {
		t.Fatalf("idempotent removal failed: %v", err)
	}
	if result.Draft || f.schemeRepo.draftCount() != 0 {
		t.Errorf("no-op removal must not create a draft")
	}
}

func TestRemoveWorkflowMappingClearsDefault(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{
		Name:              "Scheme",
		DefaultWorkflow:   "classic",
		IssueTypeMappings: map[string]string{"1": "classic", "2": "simple"},
	})
	result, err := f.service.RemoveWorkflowMapping(context.CreateFromId("tester"), created.Id, "classic", false)
	if err != nil {
		t.Fatalf("failed to remove workflow mapping: %v", err)
	}
	if result.DefaultWorkflow != view.SystemDefaultWorkflowName {
		t.Errorf("removing the default workflow must clear the default, got %q", result.DefaultWorkflow)
	}
	if _, mapped := result.IssueTypeMappings["1"]; mapped {
		t.Errorf("issue types mapped to the removed workflow must be unassigned: %v", result.IssueTypeMappings)
	}
	if result.IssueTypeMappings["2"] != "simple" {
		t.Errorf("other mappings must survive: %v", result.IssueTypeMappings)
	}
}

func TestSetWorkflowMappingReplacesAssignments(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{
		Name:              "Scheme",
		DefaultWorkflow:   "simple",
		IssueTypeMappings: map[string]string{"1": "simple", "2": "classic"},
	})
	issueTypes := []string{"2", "3"}
	clearDefault := false
	result, err := f.service.SetWorkflowMapping(context.CreateFromId("tester"), created.Id, "simple", &view.WorkflowMapping{
		Workflow:       "simple",
		IssueTypes:     &issueTypes,
		DefaultMapping: &clearDefault,
	})
	if err != nil {
		t.Fatalf("failed to set workflow mapping: %v", err)
	}
	if _, mapped := result.IssueTypeMappings["1"]; mapped {
		t.Errorf("issue type 1 must be unassigned from 'simple': %v", result.IssueTypeMappings)
	}
	if result.IssueTypeMappings["2"] != "simple" || result.IssueTypeMappings["3"] != "simple" {
		t.Errorf("issue types 2 and 3 must be reassigned to 'simple': %v", result.IssueTypeMappings)
	}
	if result.DefaultWorkflow != view.SystemDefaultWorkflowName {
		t.Errorf("defaultMapping=false must clear the default held by the workflow, got %q", result.DefaultWorkflow)
	}
}

func TestUnknownReferencesAreRejected(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Scheme"})

	_, err := f.service.SetWorkflowMapping(context.CreateFromId("tester"), created.Id, "missing", &view.WorkflowMapping{Workflow: "missing"})
	assertCustomError(t, err, http.StatusNotFound, exception.WorkflowNotFound)

	_, err = f.service.RemoveWorkflowMapping(context.CreateFromId("tester"), created.Id, "missing", false)
	assertCustomError(t, err, http.StatusNotFound, exception.WorkflowNotFound)

	_, err = f.service.SetIssueTypeMapping(context.CreateFromId("tester"), created.Id, &view.IssueTypeMapping{IssueType: "99", Workflow: "classic"})
	assertCustomError(t, err, http.StatusNotFound, exception.IssueTypeNotFound)

	// a known issue type mapped to an unknown workflow is a validation failure
	_, err = f.service.SetIssueTypeMapping(context.CreateFromId("tester"), created.Id, &view.IssueTypeMapping{IssueType: "1", Workflow: "missing"})
	assertCustomError(t, err, http.StatusBadRequest, exception.WorkflowSchemeInvalid)

	_, err = f.service.SetDefaultWorkflow(context.CreateFromId("tester"), created.Id, "missing", false)
	assertCustomError(t, err, http.StatusBadRequest, exception.WorkflowSchemeInvalid)

	_, err = f.service.GetScheme("no-such-scheme", false)
	assertCustomError(t, err, http.StatusNotFound, exception.WorkflowSchemeNotFound)
}

func TestExplicitDraftLifecycle(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Scheme", DefaultWorkflow: "classic"})

	_, err := f.service.GetDraft(created.Id)
	assertCustomError(t, err, http.StatusNotFound, exception.WorkflowSchemeDraftNotFound)

	draft, err := f.service.CreateDraft(context.CreateFromId("tester"), created.Id)
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}
	if !draft.Draft || draft.DefaultWorkflow != "classic" {
		t.Errorf("draft must copy the parent scheme: %+v", draft)
	}

	_, err = f.service.CreateDraft(context.CreateFromId("tester"), created.Id)
	assertCustomError(t, err, http.StatusConflict, exception.WorkflowSchemeDraftAlreadyExists)

	if err := f.service.DiscardDraft(created.Id); err != nil {
		t.Fatalf("failed to discard draft: %v", err)
	}
	_, err = f.service.GetDraft(created.Id)
	assertCustomError(t, err, http.StatusNotFound, exception.WorkflowSchemeDraftNotFound)

	// discarding again is a no-op
	if err := f.service.DiscardDraft(created.Id); err != nil {
		t.Errorf("discarding a missing draft must succeed, got %v", err)
	}
}

func TestDiscardDraftRestoresActiveView(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Scheme", DefaultWorkflow: "classic"})
	f.projects.assigned[created.Id] = true

	if _, err := f.service.SetDefaultWorkflow(context.CreateFromId("tester"), created.Id, "simple", true); err != nil {
		t.Fatalf("failed to create draft via mutation: %v", err)
	}
	if err := f.service.DiscardDraft(created.Id); err != nil {
		t.Fatalf("failed to discard draft: %v", err)
	}
	got, err := f.service.GetScheme(created.Id, true)
	if err != nil {
		t.Fatalf("failed to get scheme: %v", err)
	}
	if got.Draft || got.DefaultWorkflow != "classic" {
		t.Errorf("discard must restore the active view, got %+v", got)
	}
}

func TestDeleteScheme(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Scheme"})
	f.projects.assigned[created.Id] = true

	err := f.service.DeleteScheme(context.CreateFromId("tester"), created.Id)
	assertCustomError(t, err, http.StatusConflict, exception.WorkflowSchemeDeletionRestricted)

	f.projects.assigned[created.Id] = false
	if _, err := f.service.CreateDraft(context.CreateFromId("tester"), created.Id); err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}
	if err := f.service.DeleteScheme(context.CreateFromId("tester"), created.Id); err != nil {
		t.Fatalf("failed to delete scheme: %v", err)
	}
	_, err = f.service.GetScheme(created.Id, false)
	assertCustomError(t, err, http.StatusNotFound, exception.WorkflowSchemeNotFound)
	if f.schemeRepo.draftCount() != 0 {
		t.Errorf("deleting a scheme must remove its draft")
	}
}

func TestUpdateSchemePartialSemantics(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{
		Name:              "Scheme",
		Description:       "to be cleared",
		DefaultWorkflow:   "classic",
		IssueTypeMappings: map[string]string{"1": "classic"},
	})

	emptyDefault := ""
	newMappings := map[string]string{"2": "simple"}
	result, err := f.service.UpdateScheme(context.CreateFromId("tester"), created.Id, &view.WorkflowSchemeUpdate{
		DefaultWorkflow:   &emptyDefault,
		IssueTypeMappings: &newMappings,
	})
	if err != nil {
		t.Fatalf("failed to update scheme: %v", err)
	}
	if result.Name != "Scheme" || result.Description != "to be cleared" {
		t.Errorf("omitted fields must stay untouched: %+v", result)
	}
	if result.DefaultWorkflow != view.SystemDefaultWorkflowName {
		t.Errorf("explicit empty default must clear it, got %q", result.DefaultWorkflow)
	}
	if len(result.IssueTypeMappings) != 1 || result.IssueTypeMappings["2"] != "simple" {
		t.Errorf("mappings must be replaced wholesale: %v", result.IssueTypeMappings)
	}
}

func TestConcurrentGuardedMutationsCreateSingleDraft(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{Name: "Scheme"})
	f.projects.assigned[created.Id] = true

	var wg sync.WaitGroup
	errs := make([]error, 2)
	workflows := []string{"classic", "simple"}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.SetDefaultWorkflow(context.CreateFromId("tester"), created.Id, workflows[i], true)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent mutation %d failed: %v", i, err)
		}
	}
	if f.schemeRepo.draftCount() != 1 {
		t.Fatalf("expected exactly one draft, got %d", f.schemeRepo.draftCount())
	}
	draft, err := f.service.GetDraft(created.Id)
	if err != nil {
		t.Fatalf("failed to get draft: %v", err)
	}
	if draft.DefaultWorkflow != "classic" && draft.DefaultWorkflow != "simple" {
		t.Errorf("draft default must be one of the written values, got %q", draft.DefaultWorkflow)
	}
}

func TestGetWorkflowMappingsGrouping(t *testing.T) {
	f := newSchemeServiceFixture()
	created := f.createScheme(t, view.WorkflowScheme{
		Name:              "Scheme",
		DefaultWorkflow:   "classic",
		IssueTypeMappings: map[string]string{"1": "simple", "2": "simple", "3": "classic"},
	})
	mappings, err := f.service.GetWorkflowMappings(created.Id, false)
	if err != nil {
		t.Fatalf("failed to get workflow mappings: %v", err)
	}
	byWorkflow := map[string]view.WorkflowMapping{}
	for _, m := range mappings.Mappings {
		byWorkflow[m.Workflow] = m
	}
	simple, exists := byWorkflow["simple"]
	if !exists || simple.IssueTypes == nil || len(*simple.IssueTypes) != 2 {
		t.Errorf("unexpected grouping for 'simple': %+v", simple)
	}
	classic, exists := byWorkflow["classic"]
	if !exists || classic.DefaultMapping == nil || !*classic.DefaultMapping {
		t.Errorf("'classic' must be flagged as default: %+v", classic)
	}

	single, err := f.service.GetWorkflowMapping(created.Id, "simple", false)
	if err != nil {
		t.Fatalf("failed to get single workflow mapping: %v", err)
	}
	if single.IssueTypes == nil || len(*single.IssueTypes) != 2 {
		t.Errorf("unexpected single mapping: %+v", single)
	}
}
