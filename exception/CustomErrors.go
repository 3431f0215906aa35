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

package exception

// generic request handling
const IncorrectParamType = "10"
const IncorrectParamTypeMsg = "$param parameter should be $type"

const BadRequestBody = "11"
const BadRequestBodyMsg = "failed to decode body"

const RequiredParamsMissing = "12"
const RequiredParamsMissingMsg = "required parameters are missing: $params"

const InvalidParameterValue = "13"
const InvalidParameterValueMsg = "value '$value' is not allowed for parameter $param"

const EmptyParameter = "14"
const EmptyParameterMsg = "parameter $param should not be empty"

// security
const ApiKeyNotFound = "50"
const ApiKeyNotFoundMsg = "api key not found or invalid"

const InsufficientPrivileges = "51"
const InsufficientPrivilegesMsg = "you don't have enough privileges to perform this operation"

// workflow schemes
const WorkflowSchemeNotFound = "2100"
const WorkflowSchemeNotFoundMsg = "workflow scheme $schemeId not found"

const WorkflowSchemeNameAlreadyExists = "2101"
const WorkflowSchemeNameAlreadyExistsMsg = "workflow scheme with name '$name' already exists"

const WorkflowSchemeInvalid = "2102"
const WorkflowSchemeInvalidMsg = "workflow scheme is invalid: $errors"

const WorkflowSchemeModificationRestricted = "2103"
const WorkflowSchemeModificationRestrictedMsg = "workflow scheme $schemeId is assigned to at least one project and can not be modified without updateDraftIfNeeded"

const WorkflowSchemeDeletionRestricted = "2104"
const WorkflowSchemeDeletionRestrictedMsg = "workflow scheme $schemeId is assigned to at least one project and can not be deleted"

// drafts
const WorkflowSchemeDraftNotFound = "2110"
const WorkflowSchemeDraftNotFoundMsg = "workflow scheme $schemeId does not have a draft"

const WorkflowSchemeDraftAlreadyExists = "2111"
const WorkflowSchemeDraftAlreadyExistsMsg = "workflow scheme $schemeId already has a draft"

// reference catalogs
const WorkflowNotFound = "2120"
const WorkflowNotFoundMsg = "workflow '$workflow' does not exist"

const IssueTypeNotFound = "2121"
const IssueTypeNotFoundMsg = "issue type '$issueType' does not exist"
