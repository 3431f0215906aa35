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
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/trackspace/workflow-scheme-service/view"
)

const (
	ARTIFACT_DESCRIPTOR_VERSION    = "ARTIFACT_DESCRIPTOR_VERSION"
	PRODUCTION_MODE                = "PRODUCTION_MODE"
	LOG_LEVEL                      = "LOG_LEVEL"
	LISTEN_ADDRESS                 = "LISTEN_ADDRESS"
	ORIGIN_ALLOWED                 = "ORIGIN_ALLOWED"
	TRACKSPACE_POSTGRESQL_HOST     = "TRACKSPACE_POSTGRESQL_HOST"
	TRACKSPACE_POSTGRESQL_PORT     = "TRACKSPACE_POSTGRESQL_PORT"
	TRACKSPACE_POSTGRESQL_DB_NAME  = "TRACKSPACE_POSTGRESQL_DB_NAME"
	TRACKSPACE_POSTGRESQL_USERNAME = "TRACKSPACE_POSTGRESQL_USERNAME"
	TRACKSPACE_POSTGRESQL_PASSWORD = "TRACKSPACE_POSTGRESQL_PASSWORD"
	TRACKSPACE_ADMIN_API_KEY       = "TRACKSPACE_ADMIN_API_KEY"
	TRACKSPACE_READONLY_API_KEY    = "TRACKSPACE_READONLY_API_KEY"
	SCHEMES_CLEANUP_SCHEDULE       = "SCHEMES_CLEANUP_SCHEDULE"
	SCHEMES_CLEANUP_RETENTION_DAYS = "SCHEMES_CLEANUP_RETENTION_DAYS"
)

type SystemInfoService interface {
	Init() error
	GetSystemInfo() *view.SystemInfo
	GetBackendVersion() string
	IsProductionMode() bool
	GetLogLevel() string
	GetListenAddress() string
	GetOriginAllowed() string
	GetPGHost() string
	GetPGPort() int
	GetPGDB() string
	GetPGUser() string
	GetPGPassword() string
	GetCredsFromEnv() *view.DbCredentials
	GetAdminApiKey() string
	GetReadonlyApiKey() string
	GetSchemesCleanupSchedule() string
	GetSchemesCleanupRetentionDays() int
}

func NewSystemInfoService() (SystemInfoService, error) {
	s := &systemInfoServiceImpl{
		systemInfoMap: make(map[string]interface{})}
	if err := s.Init(); err != nil {
		log.Error("Failed to read system info: " + err.Error())
		return nil, err
	}
	return s, nil
}

type systemInfoServiceImpl struct {
	systemInfoMap map[string]interface{}
}

func (g systemInfoServiceImpl) Init() error {
	if err := g.setProductionMode(); err != nil {
		return err
	}
	g.setBackendVersion()
	g.setLogLevel()
	g.setListenAddress()
	g.setOriginAllowed()
	g.setPGHost()
	if err := g.setPGPort(); err != nil {
		return err
	}
	g.setPGDB()
	g.setPGUser()
	g.setPGPassword()
	if err := g.setAdminApiKey(); err != nil {
		return err
	}
	g.setReadonlyApiKey()
	g.setSchemesCleanupSchedule()
	if err := g.setSchemesCleanupRetentionDays(); err != nil {
		return err
	}
	return nil
}

func (g systemInfoServiceImpl) GetSystemInfo() *view.SystemInfo {
	return &view.SystemInfo{
		BackendVersion: g.GetBackendVersion(),
	}
}

func (g systemInfoServiceImpl) setProductionMode() error {
	envVal := os.Getenv(PRODUCTION_MODE)
	if envVal == "" {
		envVal = "false"
	}
	productionMode, err := strconv.ParseBool(envVal)
	if err != nil {
		return fmt.Errorf("failed to parse %v env value: %v", PRODUCTION_MODE, err.Error())
	}
	g.systemInfoMap[PRODUCTION_MODE] = productionMode
	return nil
}

func (g systemInfoServiceImpl) IsProductionMode() bool {
	return g.systemInfoMap[PRODUCTION_MODE].(bool)
}

func (g systemInfoServiceImpl) setBackendVersion() {
	version := os.Getenv(ARTIFACT_DESCRIPTOR_VERSION)
	if version == "" {
		version = "unknown"
	}
	g.systemInfoMap[ARTIFACT_DESCRIPTOR_VERSION] = version
}

func (g systemInfoServiceImpl) GetBackendVersion() string {
	return g.systemInfoMap[ARTIFACT_DESCRIPTOR_VERSION].(string)
}

func (g systemInfoServiceImpl) setLogLevel() {
	g.systemInfoMap[LOG_LEVEL] = os.Getenv(LOG_LEVEL)
}

func (g systemInfoServiceImpl) GetLogLevel() string {
	return g.systemInfoMap[LOG_LEVEL].(string)
}

func (g systemInfoServiceImpl) setListenAddress() {
	listenAddr := os.Getenv(LISTEN_ADDRESS)
	if listenAddr == "" {
		listenAddr = ":8080"
	}
	g.systemInfoMap[LISTEN_ADDRESS] = listenAddr
}

func (g systemInfoServiceImpl) GetListenAddress() string {
	return g.systemInfoMap[LISTEN_ADDRESS].(string)
}

func (g systemInfoServiceImpl) setOriginAllowed() {
	g.systemInfoMap[ORIGIN_ALLOWED] = os.Getenv(ORIGIN_ALLOWED)
}

func (g systemInfoServiceImpl) GetOriginAllowed() string {
	return g.systemInfoMap[ORIGIN_ALLOWED].(string)
}

func (g systemInfoServiceImpl) setPGHost() {
	host := os.Getenv(TRACKSPACE_POSTGRESQL_HOST)
	if host == "" {
		host = "localhost"
	}
	g.systemInfoMap[TRACKSPACE_POSTGRESQL_HOST] = host
}

func (g systemInfoServiceImpl) GetPGHost() string {
	return g.systemInfoMap[TRACKSPACE_POSTGRESQL_HOST].(string)
}

func (g systemInfoServiceImpl) setPGPort() error {
	portStr := os.Getenv(TRACKSPACE_POSTGRESQL_PORT)
	var port int
	var err error
	if portStr == "" {
		port = 5432
	} else {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("failed to parse %v env value: %v", TRACKSPACE_POSTGRESQL_PORT, err.Error())
		}
	}
	g.systemInfoMap[TRACKSPACE_POSTGRESQL_PORT] = port
	return nil
}

func (g systemInfoServiceImpl) GetPGPort() int {
	return g.systemInfoMap[TRACKSPACE_POSTGRESQL_PORT].(int)
}

func (g systemInfoServiceImpl) setPGDB() {
	database := os.Getenv(TRACKSPACE_POSTGRESQL_DB_NAME)
	if database == "" {
		database = "trackspace"
	}
	g.systemInfoMap[TRACKSPACE_POSTGRESQL_DB_NAME] = database
}

func (g systemInfoServiceImpl) GetPGDB() string {
	return g.systemInfoMap[TRACKSPACE_POSTGRESQL_DB_NAME].(string)
}

func (g systemInfoServiceImpl) setPGUser() {
	user := os.Getenv(TRACKSPACE_POSTGRESQL_USERNAME)
	if user == "" {
		user = "trackspace"
	}
	g.systemInfoMap[TRACKSPACE_POSTGRESQL_USERNAME] = user
}

func (g systemInfoServiceImpl) GetPGUser() string {
	return g.systemInfoMap[TRACKSPACE_POSTGRESQL_USERNAME].(string)
}

func (g systemInfoServiceImpl) setPGPassword() {
	password := os.Getenv(TRACKSPACE_POSTGRESQL_PASSWORD)
	if password == "" {
		password = "trackspace"
	}
	g.systemInfoMap[TRACKSPACE_POSTGRESQL_PASSWORD] = password
}

func (g systemInfoServiceImpl) GetPGPassword() string {
	return g.systemInfoMap[TRACKSPACE_POSTGRESQL_PASSWORD].(string)
}

func (g systemInfoServiceImpl) GetCredsFromEnv() *view.DbCredentials {
	return &view.DbCredentials{
		Host:     g.GetPGHost(),
		Port:     g.GetPGPort(),
		Database: g.GetPGDB(),
		Username: g.GetPGUser(),
		Password: g.GetPGPassword(),
	}
}

func (g systemInfoServiceImpl) setAdminApiKey() error {
	apiKey := os.Getenv(TRACKSPACE_ADMIN_API_KEY)
	if apiKey == "" {
		return fmt.Errorf("env %v is not set or empty", TRACKSPACE_ADMIN_API_KEY)
	}
	g.systemInfoMap[TRACKSPACE_ADMIN_API_KEY] = apiKey
	return nil
}

func (g systemInfoServiceImpl) GetAdminApiKey() string {
	return g.systemInfoMap[TRACKSPACE_ADMIN_API_KEY].(string)
}

func (g systemInfoServiceImpl) setReadonlyApiKey() {
	g.systemInfoMap[TRACKSPACE_READONLY_API_KEY] = os.Getenv(TRACKSPACE_READONLY_API_KEY)
}

func (g systemInfoServiceImpl) GetReadonlyApiKey() string {
	return g.systemInfoMap[TRACKSPACE_READONLY_API_KEY].(string)
}

func (g systemInfoServiceImpl) setSchemesCleanupSchedule() {
	schedule := os.Getenv(SCHEMES_CLEANUP_SCHEDULE)
	if schedule == "" {
		schedule = "0 1 * * 0" // at 01:00 on Sunday
	}
	g.systemInfoMap[SCHEMES_CLEANUP_SCHEDULE] = schedule
}

func (g systemInfoServiceImpl) GetSchemesCleanupSchedule() string {
	return g.systemInfoMap[SCHEMES_CLEANUP_SCHEDULE].(string)
}

func (g systemInfoServiceImpl) setSchemesCleanupRetentionDays() error {
	daysStr := os.Getenv(SCHEMES_CLEANUP_RETENTION_DAYS)
	var days int
	var err error
	if daysStr == "" {
		days = 30
	} else {
		days, err = strconv.Atoi(daysStr)
		if err != nil {
			return fmt.Errorf("failed to parse %v env value: %v", SCHEMES_CLEANUP_RETENTION_DAYS, err.Error())
		}
	}
	g.systemInfoMap[SCHEMES_CLEANUP_RETENTION_DAYS] = days
	return nil
}

func (g systemInfoServiceImpl) GetSchemesCleanupRetentionDays() int {
	return g.systemInfoMap[SCHEMES_CLEANUP_RETENTION_DAYS].(int)
}
