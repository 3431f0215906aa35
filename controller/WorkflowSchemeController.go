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

package controller

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/trackspace/workflow-scheme-service/context"
	"github.com/trackspace/workflow-scheme-service/exception"
	"github.com/trackspace/workflow-scheme-service/service"
	"github.com/trackspace/workflow-scheme-service/utils"
	"github.com/trackspace/workflow-scheme-service/view"
)

// WorkflowSchemeController is a thin REST adapter over WorkflowSchemeService. The
// /draft sub-resource addresses the draft overlay directly: reads and mutations
// there require an existing draft, except for the draft update which creates one
// on demand.
type WorkflowSchemeController interface {
	AddWorkflowScheme(w http.ResponseWriter, r *http.Request)
	GetWorkflowSchemes(w http.ResponseWriter, r *http.Request)
	GetWorkflowScheme(w http.ResponseWriter, r *http.Request)
	UpdateWorkflowScheme(w http.ResponseWriter, r *http.Request)
	DeleteWorkflowScheme(w http.ResponseWriter, r *http.Request)

	CreateWorkflowSchemeDraft(w http.ResponseWriter, r *http.Request)
	GetWorkflowSchemeDraft(w http.ResponseWriter, r *http.Request)
	UpdateWorkflowSchemeDraft(w http.ResponseWriter, r *http.Request)
	DeleteWorkflowSchemeDraft(w http.ResponseWriter, r *http.Request)

	GetWorkflowMappings(w http.ResponseWriter, r *http.Request)
	UpdateWorkflowMapping(w http.ResponseWriter, r *http.Request)
	DeleteWorkflowMapping(w http.ResponseWriter, r *http.Request)
	GetDraftWorkflowMappings(w http.ResponseWriter, r *http.Request)
	UpdateDraftWorkflowMapping(w http.ResponseWriter, r *http.Request)
	DeleteDraftWorkflowMapping(w http.ResponseWriter, r *http.Request)

	GetIssueTypeMapping(w http.ResponseWriter, r *http.Request)
	UpdateIssueTypeMapping(w http.ResponseWriter, r *http.Request)
	DeleteIssueTypeMapping(w http.ResponseWriter, r *http.Request)
	GetDraftIssueTypeMapping(w http.ResponseWriter, r *http.Request)
	UpdateDraftIssueTypeMapping(w http.ResponseWriter, r *http.Request)
	DeleteDraftIssueTypeMapping(w http.ResponseWriter, r *http.Request)

	GetDefaultWorkflow(w http.ResponseWriter, r *http.Request)
	UpdateDefaultWorkflow(w http.ResponseWriter, r *http.Request)
	DeleteDefaultWorkflow(w http.ResponseWriter, r *http.Request)
	GetDraftDefaultWorkflow(w http.ResponseWriter, r *http.Request)
	UpdateDraftDefaultWorkflow(w http.ResponseWriter, r *http.Request)
	DeleteDraftDefaultWorkflow(w http.ResponseWriter, r *http.Request)
}

func NewWorkflowSchemeController(schemeService service.WorkflowSchemeService) WorkflowSchemeController {
	return &workflowSchemeControllerImpl{schemeService: schemeService}
}

type workflowSchemeControllerImpl struct {
	schemeService service.WorkflowSchemeService
}

func (c workflowSchemeControllerImpl) checkAdminPermission(w http.ResponseWriter, r *http.Request) bool {
	secCtx := context.Create(r)
	if secCtx.GetUserSystemRole() != view.SysadmRole {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusForbidden,
			Code:    exception.InsufficientPrivileges,
			Message: exception.InsufficientPrivilegesMsg,
		})
		return false
	}
	return true
}

// requireDraft rejects draft sub-resource calls addressed to a scheme without a
// draft, regardless of the parent scheme's state.
func (c workflowSchemeControllerImpl) requireDraft(w http.ResponseWriter, schemeId string) bool {
	hasDraft, err := c.schemeService.HasDraft(schemeId)
	if err != nil {
		RespondWithError(w, "Failed to check workflow scheme draft", err)
		return false
	}
	if !hasDraft {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.WorkflowSchemeDraftNotFound,
			Message: exception.WorkflowSchemeDraftNotFoundMsg,
			Params:  map[string]interface{}{"schemeId": schemeId},
		})
		return false
	}
	return true
}

func (c workflowSchemeControllerImpl) AddWorkflowScheme(w http.ResponseWriter, r *http.Request) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	defer r.Body.Close()
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	var scheme view.WorkflowScheme
	err = json.Unmarshal(body, &scheme)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	validationErr := utils.ValidateObject(scheme)
	if validationErr != nil {
		RespondWithError(w, "Failed to create workflow scheme", validationErr)
		return
	}
	result, err := c.schemeService.CreateScheme(context.Create(r), &scheme)
	if err != nil {
		RespondWithError(w, "Failed to create workflow scheme", err)
		return
	}
	RespondWithJson(w, http.StatusCreated, result)
}

func (c workflowSchemeControllerImpl) GetWorkflowSchemes(w http.ResponseWriter, r *http.Request) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	result, err := c.schemeService.GetSchemes()
	if err != nil {
		RespondWithError(w, "Failed to get workflow schemes", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) GetWorkflowScheme(w http.ResponseWriter, r *http.Request) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	returnDraftIfExists, customErr := getBoolQueryParam(r, "returnDraftIfExists")
	if customErr != nil {
		RespondWithCustomError(w, customErr)
		return
	}
	result, err := c.schemeService.GetScheme(schemeId, returnDraftIfExists)
	if err != nil {
		RespondWithError(w, "Failed to get workflow scheme", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) UpdateWorkflowScheme(w http.ResponseWriter, r *http.Request) {
	c.updateScheme(w, r, false)
}

func (c workflowSchemeControllerImpl) UpdateWorkflowSchemeDraft(w http.ResponseWriter, r *http.Request) {
	c.updateScheme(w, r, true)
}

func (c workflowSchemeControllerImpl) updateScheme(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	defer r.Body.Close()
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	var update view.WorkflowSchemeUpdate
	err = json.Unmarshal(body, &update)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	if draftNamespace {
		update.UpdateDraftIfNeeded = true
	}
	result, err := c.schemeService.UpdateScheme(context.Create(r), schemeId, &update)
	if err != nil {
		RespondWithError(w, "Failed to update workflow scheme", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) DeleteWorkflowScheme(w http.ResponseWriter, r *http.Request) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	err := c.schemeService.DeleteScheme(context.Create(r), schemeId)
	if err != nil {
		RespondWithError(w, "Failed to delete workflow scheme", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c workflowSchemeControllerImpl) CreateWorkflowSchemeDraft(w http.ResponseWriter, r *http.Request) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	result, err := c.schemeService.CreateDraft(context.Create(r), schemeId)
	if err != nil {
		RespondWithError(w, "Failed to create workflow scheme draft", err)
		return
	}
	RespondWithJson(w, http.StatusCreated, result)
}

func (c workflowSchemeControllerImpl) GetWorkflowSchemeDraft(w http.ResponseWriter, r *http.Request) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	result, err := c.schemeService.GetDraft(schemeId)
	if err != nil {
		RespondWithError(w, "Failed to get workflow scheme draft", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) DeleteWorkflowSchemeDraft(w http.ResponseWriter, r *http.Request) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	if !c.requireDraft(w, schemeId) {
		return
	}
	err := c.schemeService.DiscardDraft(schemeId)
	if err != nil {
		RespondWithError(w, "Failed to delete workflow scheme draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c workflowSchemeControllerImpl) GetWorkflowMappings(w http.ResponseWriter, r *http.Request) {
	c.getWorkflowMappings(w, r, false)
}

func (c workflowSchemeControllerImpl) GetDraftWorkflowMappings(w http.ResponseWriter, r *http.Request) {
	c.getWorkflowMappings(w, r, true)
}

func (c workflowSchemeControllerImpl) getWorkflowMappings(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	workflowName := r.URL.Query().Get("workflowName")
	if workflowName != "" {
		result, err := c.schemeService.GetWorkflowMapping(schemeId, workflowName, draftNamespace)
		if err != nil {
			RespondWithError(w, "Failed to get workflow mapping", err)
			return
		}
		RespondWithJson(w, http.StatusOK, result)
		return
	}
	result, err := c.schemeService.GetWorkflowMappings(schemeId, draftNamespace)
	if err != nil {
		RespondWithError(w, "Failed to get workflow mappings", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) UpdateWorkflowMapping(w http.ResponseWriter, r *http.Request) {
	c.updateWorkflowMapping(w, r, false)
}

func (c workflowSchemeControllerImpl) UpdateDraftWorkflowMapping(w http.ResponseWriter, r *http.Request) {
	c.updateWorkflowMapping(w, r, true)
}

func (c workflowSchemeControllerImpl) updateWorkflowMapping(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	workflowName := getStringParam(r, "workflowName")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	defer r.Body.Close()
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	var mapping view.WorkflowMapping
	err = json.Unmarshal(body, &mapping)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	if draftNamespace {
		mapping.UpdateDraftIfNeeded = true
	}
	result, err := c.schemeService.SetWorkflowMapping(context.Create(r), schemeId, workflowName, &mapping)
	if err != nil {
		RespondWithError(w, "Failed to update workflow mapping", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) DeleteWorkflowMapping(w http.ResponseWriter, r *http.Request) {
	c.deleteWorkflowMapping(w, r, false)
}

func (c workflowSchemeControllerImpl) DeleteDraftWorkflowMapping(w http.ResponseWriter, r *http.Request) {
	c.deleteWorkflowMapping(w, r, true)
}

func (c workflowSchemeControllerImpl) deleteWorkflowMapping(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	workflowName := getStringParam(r, "workflowName")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	updateDraftIfNeeded, customErr := getBoolQueryParam(r, "updateDraftIfNeeded")
	if customErr != nil {
		RespondWithCustomError(w, customErr)
		return
	}
	if draftNamespace {
		updateDraftIfNeeded = true
	}
	result, err := c.schemeService.RemoveWorkflowMapping(context.Create(r), schemeId, workflowName, updateDraftIfNeeded)
	if err != nil {
		RespondWithError(w, "Failed to delete workflow mapping", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) GetIssueTypeMapping(w http.ResponseWriter, r *http.Request) {
	c.getIssueTypeMapping(w, r, false)
}

func (c workflowSchemeControllerImpl) GetDraftIssueTypeMapping(w http.ResponseWriter, r *http.Request) {
	c.getIssueTypeMapping(w, r, true)
}

func (c workflowSchemeControllerImpl) getIssueTypeMapping(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	issueType := getStringParam(r, "issueType")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	result, err := c.schemeService.GetIssueTypeMapping(schemeId, issueType, draftNamespace)
	if err != nil {
		RespondWithError(w, "Failed to get issue type mapping", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) UpdateIssueTypeMapping(w http.ResponseWriter, r *http.Request) {
	c.updateIssueTypeMapping(w, r, false)
}

func (c workflowSchemeControllerImpl) UpdateDraftIssueTypeMapping(w http.ResponseWriter, r *http.Request) {
	c.updateIssueTypeMapping(w, r, true)
}

func (c workflowSchemeControllerImpl) updateIssueTypeMapping(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	issueType := getStringParam(r, "issueType")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	defer r.Body.Close()
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	var mapping view.IssueTypeMapping
	err = json.Unmarshal(body, &mapping)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	mapping.IssueType = issueType
	if draftNamespace {
		mapping.UpdateDraftIfNeeded = true
	}
	result, err := c.schemeService.SetIssueTypeMapping(context.Create(r), schemeId, &mapping)
	if err != nil {
		RespondWithError(w, "Failed to update issue type mapping", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) DeleteIssueTypeMapping(w http.ResponseWriter, r *http.Request) {
	c.deleteIssueTypeMapping(w, r, false)
}

func (c workflowSchemeControllerImpl) DeleteDraftIssueTypeMapping(w http.ResponseWriter, r *http.Request) {
	c.deleteIssueTypeMapping(w, r, true)
}

func (c workflowSchemeControllerImpl) deleteIssueTypeMapping(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	issueType := getStringParam(r, "issueType")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	updateDraftIfNeeded, customErr := getBoolQueryParam(r, "updateDraftIfNeeded")
	if customErr != nil {
		RespondWithCustomError(w, customErr)
		return
	}
	if draftNamespace {
		updateDraftIfNeeded = true
	}
	result, err := c.schemeService.RemoveIssueTypeMapping(context.Create(r), schemeId, issueType, updateDraftIfNeeded)
	if err != nil {
		RespondWithError(w, "Failed to delete issue type mapping", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) GetDefaultWorkflow(w http.ResponseWriter, r *http.Request) {
	c.getDefaultWorkflow(w, r, false)
}

func (c workflowSchemeControllerImpl) GetDraftDefaultWorkflow(w http.ResponseWriter, r *http.Request) {
	c.getDefaultWorkflow(w, r, true)
}

func (c workflowSchemeControllerImpl) getDefaultWorkflow(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	returnDraftIfExists := draftNamespace
	if !draftNamespace {
		var customErr *exception.CustomError
		returnDraftIfExists, customErr = getBoolQueryParam(r, "returnDraftIfExists")
		if customErr != nil {
			RespondWithCustomError(w, customErr)
			return
		}
	}
	result, err := c.schemeService.GetDefaultWorkflow(schemeId, returnDraftIfExists)
	if err != nil {
		RespondWithError(w, "Failed to get default workflow", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) UpdateDefaultWorkflow(w http.ResponseWriter, r *http.Request) {
	c.updateDefaultWorkflow(w, r, false)
}

func (c workflowSchemeControllerImpl) UpdateDraftDefaultWorkflow(w http.ResponseWriter, r *http.Request) {
	c.updateDefaultWorkflow(w, r, true)
}

func (c workflowSchemeControllerImpl) updateDefaultWorkflow(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	defer r.Body.Close()
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	var defaultMapping view.DefaultMapping
	err = json.Unmarshal(body, &defaultMapping)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error()})
		return
	}
	validationErr := utils.ValidateObject(defaultMapping)
	if validationErr != nil {
		RespondWithError(w, "Failed to update default workflow", validationErr)
		return
	}
	if draftNamespace {
		defaultMapping.UpdateDraftIfNeeded = true
	}
	result, err := c.schemeService.SetDefaultWorkflow(context.Create(r), schemeId, defaultMapping.Workflow, defaultMapping.UpdateDraftIfNeeded)
	if err != nil {
		RespondWithError(w, "Failed to update default workflow", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}

func (c workflowSchemeControllerImpl) DeleteDefaultWorkflow(w http.ResponseWriter, r *http.Request) {
	c.deleteDefaultWorkflow(w, r, false)
}

func (c workflowSchemeControllerImpl) DeleteDraftDefaultWorkflow(w http.ResponseWriter, r *http.Request) {
	c.deleteDefaultWorkflow(w, r, true)
}

func (c workflowSchemeControllerImpl) deleteDefaultWorkflow(w http.ResponseWriter, r *http.Request, draftNamespace bool) {
	if !c.checkAdminPermission(w, r) {
		return
	}
	schemeId := getStringParam(r, "schemeId")
	if draftNamespace && !c.requireDraft(w, schemeId) {
		return
	}
	updateDraftIfNeeded, customErr := getBoolQueryParam(r, "updateDraftIfNeeded")
	if customErr != nil {
		RespondWithCustomError(w, customErr)
		return
	}
	if draftNamespace {
		updateDraftIfNeeded = true
	}
	result, err := c.schemeService.RemoveDefaultWorkflow(context.Create(r), schemeId, updateDraftIfNeeded)
	if err != nil {
		RespondWithError(w, "Failed to delete default workflow", err)
		return
	}
	RespondWithJson(w, http.StatusOK, result)
}
