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

package security

import (
	goctx "context"
	"fmt"
	"net/http"
	"time"

	"github.com/shaj13/go-guardian/v2/auth"
	"github.com/shaj13/libcache"
	_ "github.com/shaj13/libcache/lru"
	"github.com/trackspace/workflow-scheme-service/context"
	"github.com/trackspace/workflow-scheme-service/service"
	"github.com/trackspace/workflow-scheme-service/view"
)

const ApiKeyHeader = "api-key"

func NewApiKeyStrategy(systemInfoService service.SystemInfoService) auth.Strategy {
	cache := libcache.LRU.New(100)
	cache.SetTTL(time.Minute * 60)
	return &apiKeyStrategyImpl{systemInfoService: systemInfoService, cache: cache}
}

type apiKeyStrategyImpl struct {
	systemInfoService service.SystemInfoService
	cache             libcache.Cache
}

func (a apiKeyStrategyImpl) Authenticate(ctx goctx.Context, r *http.Request) (auth.Info, error) {
	apiKey := r.Header.Get(ApiKeyHeader)
	if apiKey == "" {
		return nil, fmt.Errorf("authentication failed: header '%v' is empty", ApiKeyHeader)
	}
	if cached, exists := a.cache.Load(apiKey); exists {
		return cached.(auth.Info), nil
	}
	var user auth.Info
	switch apiKey {
	case a.systemInfoService.GetAdminApiKey():
		userExtensions := auth.Extensions{}
		userExtensions.Set(context.SystemRoleExt, view.SysadmRole)
		user = auth.NewDefaultUser("system-admin", "system-admin", []string{}, userExtensions)
	case a.systemInfoService.GetReadonlyApiKey():
		userExtensions := auth.Extensions{}
		userExtensions.Set(context.SystemRoleExt, view.ViewerRole)
		user = auth.NewDefaultUser("readonly", "readonly", []string{}, userExtensions)
	default:
		return nil, fmt.Errorf("authentication failed: '%v' doesn't exist or invalid", ApiKeyHeader)
	}
	a.cache.Store(apiKey, user)
	return user, nil
}
