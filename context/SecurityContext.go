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

package context

import (
	"net/http"

	"github.com/shaj13/go-guardian/v2/auth"
)

const SystemRoleExt = "systemRole"

type SecurityContext interface {
	GetUserId() string
	GetUserSystemRole() string
	GetApiKey() string
}

func Create(r *http.Request) SecurityContext {
	user := auth.User(r)
	return &securityContextImpl{
		userId:     user.GetID(),
		systemRole: user.GetExtensions().Get(SystemRoleExt),
		apiKey:     getApiKey(r),
	}
}

func CreateSystemContext() SecurityContext {
	return &securityContextImpl{userId: "system"}
}

func CreateFromId(userId string) SecurityContext {
	return &securityContextImpl{
		userId: userId,
	}
}

type securityContextImpl struct {
	userId     string
	systemRole string
	apiKey     string
}

func (ctx securityContextImpl) GetUserId() string {
	return ctx.userId
}

func (ctx securityContextImpl) GetUserSystemRole() string {
	return ctx.systemRole
}

func (ctx securityContextImpl) GetApiKey() string {
	return ctx.apiKey
}

func getApiKey(r *http.Request) string {
	return r.Header.Get("api-key")
}
